package mapfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func formatNum(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPoint(p [3]float64) string {
	return "( " + formatNum(p[0]) + " " + formatNum(p[1]) + " " + formatNum(p[2]) + " )"
}

// FaceLine renders a face in the layout it was parsed with.
func FaceLine(f Face) string {
	var b strings.Builder
	for _, p := range f.Points {
		b.WriteString(formatPoint(p))
		b.WriteByte(' ')
	}
	b.WriteString(f.Texture)
	if f.Valve {
		fmt.Fprintf(&b, " [ %s %s %s %s ] [ %s %s %s %s ]",
			formatNum(f.U[0]), formatNum(f.U[1]), formatNum(f.U[2]), formatNum(f.U[3]),
			formatNum(f.V[0]), formatNum(f.V[1]), formatNum(f.V[2]), formatNum(f.V[3]))
	} else {
		fmt.Fprintf(&b, " %s %s", formatNum(f.Offset[0]), formatNum(f.Offset[1]))
	}
	fmt.Fprintf(&b, " %s %s %s", formatNum(f.Rotation), formatNum(f.Scale[0]), formatNum(f.Scale[1]))
	return b.String()
}

// Write serializes m. Legacy maps are encoded back to Windows-1252.
func (m *Map) Write(w io.Writer) error {
	if m.Legacy {
		var buf bytes.Buffer
		if err := m.write(&buf); err != nil {
			return err
		}
		enc, _, err := transform.Bytes(charmap.Windows1252.NewEncoder(), buf.Bytes())
		if err != nil {
			return fmt.Errorf("mapfile: encode windows-1252: %w", err)
		}
		_, err = w.Write(enc)
		return err
	}
	return m.write(w)
}

func (m *Map) write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	for _, h := range m.Header {
		fmt.Fprintf(bw, "//%s\n", h)
	}
	for i, e := range m.Entities {
		fmt.Fprintf(bw, "// entity %d\n{\n", i)
		for _, a := range e.Attrs {
			fmt.Fprintf(bw, "\"%s\" \"%s\"\n", a.Key, a.Value)
		}
		for j, br := range e.Brushes {
			fmt.Fprintf(bw, "// brush %d\n{\n", j)
			for _, f := range br.Faces {
				bw.WriteString(FaceLine(f))
				bw.WriteByte('\n')
			}
			bw.WriteString("}\n")
		}
		bw.WriteString("}\n")
	}
	return bw.Flush()
}

// WriteFile writes m to path.
func (m *Map) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mapfile: create %s: %w", path, err)
	}
	if err := m.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("mapfile: write %s: %w", path, err)
	}
	return f.Close()
}
