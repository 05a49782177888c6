package batch

import (
	"brush2mdl/internal/brush"
	"brush2mdl/internal/mapfile"
)

const detailClassname = "func_detail"

// Rewrite turns each successfully converted entity into a model display
// entity and inserts any companion entities right after it: one display
// entity per extra model, and a func_detail carrying the clip brushes.
// Failed units are left untouched.
func Rewrite(m *mapfile.Map, units []Unit, results []Result) {
	byEntity := make(map[int]*Unit, len(units))
	for i := range units {
		byEntity[units[i].Entity] = &units[i]
	}

	inserts := make(map[int][]mapfile.Entity)
	for i := range results {
		r := &results[i]
		u := byEntity[r.Entity]
		if !r.Success || u == nil {
			continue
		}
		e := &m.Entities[r.Entity]
		origin := mapfile.FormatVec3(r.Origin)

		var extra []mapfile.Entity
		for mi := 1; mi < r.Models; mi++ {
			d := mapfile.Entity{}
			d.Set("classname", u.Options.DisplayClass)
			d.Set("origin", origin)
			d.Set("angles", "0 0 0")
			d.Set("model", u.ModelOutput(mi, r.Models))
			extra = append(extra, d)
		}

		switch u.Options.Clip {
		case brush.ClipPrecise:
			clip := mapfile.Entity{}
			clip.Set("classname", detailClassname)
			for _, b := range u.Brushes {
				clip.Brushes = append(clip.Brushes, b.WithTexture(brush.TexClip))
			}
			extra = append(extra, clip)
		case brush.ClipBox:
			if r.Clip != nil {
				clip := mapfile.Entity{}
				clip.Set("classname", detailClassname)
				clip.Brushes = []mapfile.Brush{mapfile.BoxBrush(r.Clip.Bounds.Min, r.Clip.Bounds.Max, brush.TexClip)}
				extra = append(extra, clip)
			}
		}

		e.Brushes = nil
		e.Set("classname", u.Options.DisplayClass)
		e.Set("origin", origin)
		e.Set("angles", "0 0 0")
		e.Set("model", u.ModelOutput(0, r.Models))

		if len(extra) > 0 {
			inserts[r.Entity] = extra
		}
	}
	if len(inserts) == 0 {
		return
	}

	out := make([]mapfile.Entity, 0, len(m.Entities))
	for i, e := range m.Entities {
		out = append(out, e)
		out = append(out, inserts[i]...)
	}
	m.Entities = out
}
