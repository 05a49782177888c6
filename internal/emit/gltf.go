package emit

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"brush2mdl/internal/mesh"

	"github.com/qmuntal/gltf"
)

const gltfVersion = "2.0"

func newDoc() *gltf.Document {
	doc := &gltf.Document{}
	doc.Asset.Version = gltfVersion
	doc.Asset.Generator = "brush2mdl"
	scene := uint32(0)
	doc.Scene = &scene
	doc.Scenes = append(doc.Scenes, &gltf.Scene{})
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{})
	return doc
}

// BuildPreview converts meshes into a glTF document, one node per mesh
// and one primitive per material group. Map space is Z-up; glTF is Y-up.
func BuildPreview(meshes []*mesh.Mesh) (*gltf.Document, error) {
	doc := newDoc()
	materials := make(map[string]uint32)

	for _, m := range meshes {
		gm := &gltf.Mesh{}
		for _, g := range m.Groups {
			if len(g.Tris) == 0 {
				continue
			}
			prim, err := addPrimitive(doc, m, g)
			if err != nil {
				return nil, err
			}
			mat, ok := materials[g.Material.Texture]
			if !ok {
				mat = uint32(len(doc.Materials))
				doc.Materials = append(doc.Materials, &gltf.Material{Name: g.Material.Texture})
				materials[g.Material.Texture] = mat
			}
			prim.Material = &mat
			gm.Primitives = append(gm.Primitives, prim)
		}
		if len(gm.Primitives) == 0 {
			continue
		}

		meshID := uint32(len(doc.Meshes))
		doc.Meshes = append(doc.Meshes, gm)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, &gltf.Node{Mesh: &meshID})
	}
	return doc, nil
}

// addPrimitive appends the group's vertices and indices to buffer 0 and
// creates the views and accessors referencing them.
func addPrimitive(doc *gltf.Document, m *mesh.Mesh, g mesh.Group) (*gltf.Primitive, error) {
	remap := make(map[int]uint32)
	var (
		indices   []uint32
		positions []float32
		normals   []float32
		uvs       []float32
	)
	minP := [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	maxP := [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}

	for _, tri := range g.Tris {
		for _, vi := range tri {
			ni, ok := remap[vi]
			if !ok {
				ni = uint32(len(remap))
				remap[vi] = ni
				v := m.Vertices[vi]
				p := [3]float32{float32(v.Pos[0]), float32(v.Pos[2]), float32(-v.Pos[1])}
				for k := 0; k < 3; k++ {
					minP[k] = min(minP[k], p[k])
					maxP[k] = max(maxP[k], p[k])
				}
				positions = append(positions, p[:]...)
				normals = append(normals, float32(v.Normal[0]), float32(v.Normal[2]), float32(-v.Normal[1]))
				uvs = append(uvs, float32(v.UV[0]), float32(v.UV[1]))
			}
			indices = append(indices, ni)
		}
	}

	buffer := doc.Buffers[0]
	view := func(data any) (uint32, error) {
		var buf bytes.Buffer
		if err := binary.Write(&buf, binary.LittleEndian, data); err != nil {
			return 0, fmt.Errorf("emit: gltf buffer: %w", err)
		}
		bv := &gltf.BufferView{
			Buffer:     0,
			ByteOffset: buffer.ByteLength,
			ByteLength: uint32(buf.Len()),
		}
		buffer.Data = append(buffer.Data, buf.Bytes()...)
		buffer.ByteLength += uint32(buf.Len())
		doc.BufferViews = append(doc.BufferViews, bv)
		return uint32(len(doc.BufferViews) - 1), nil
	}
	accessor := func(bv uint32, ct gltf.ComponentType, at gltf.AccessorType, count int) uint32 {
		doc.Accessors = append(doc.Accessors, &gltf.Accessor{
			BufferView:    &bv,
			ComponentType: ct,
			Type:          at,
			Count:         uint32(count),
		})
		return uint32(len(doc.Accessors) - 1)
	}

	ibv, err := view(indices)
	if err != nil {
		return nil, err
	}
	pbv, err := view(positions)
	if err != nil {
		return nil, err
	}
	nbv, err := view(normals)
	if err != nil {
		return nil, err
	}
	tbv, err := view(uvs)
	if err != nil {
		return nil, err
	}

	idx := accessor(ibv, gltf.ComponentUint, gltf.AccessorScalar, len(indices))
	pos := accessor(pbv, gltf.ComponentFloat, gltf.AccessorVec3, len(remap))
	doc.Accessors[pos].Min = minP[:]
	doc.Accessors[pos].Max = maxP[:]
	nrm := accessor(nbv, gltf.ComponentFloat, gltf.AccessorVec3, len(remap))
	tex := accessor(tbv, gltf.ComponentFloat, gltf.AccessorVec2, len(remap))

	return &gltf.Primitive{
		Indices: &idx,
		Mode:    gltf.PrimitiveTriangles,
		Attributes: gltf.Attribute{
			"POSITION":   pos,
			"NORMAL":     nrm,
			"TEXCOORD_0": tex,
		},
	}, nil
}

// WriteGLB encodes a binary glTF preview of meshes.
func WriteGLB(w io.Writer, meshes []*mesh.Mesh) error {
	doc, err := BuildPreview(meshes)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}
