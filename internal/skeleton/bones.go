// Package skeleton describes the bone hierarchy written with every mesh.
// Converted models are rigid, so in practice this is one identity bone.
package skeleton

import (
	"brush2mdl/internal/mesh"

	"github.com/go-gl/mathgl/mgl64"
)

// Bone is one node of the reference skeleton. Rotation is Euler XYZ in
// radians, as studio reference meshes store it.
type Bone struct {
	Name     string
	Parent   int
	Position mgl64.Vec3
	Rotation mgl64.Vec3
}

// Static returns the single root bone of a rigid model.
func Static() []Bone {
	return []Bone{{Name: "static_prop", Parent: -1}}
}

// BuildWorldMatrices computes the world transform for each bone in bind pose.
// Returns a slice of 4×4 matrices indexed by bone index.
func BuildWorldMatrices(bones []Bone) []mgl64.Mat4 {
	worlds := make([]mgl64.Mat4, len(bones))
	for i, bone := range bones {
		rot := mgl64.AnglesToQuat(bone.Rotation[0], bone.Rotation[1], bone.Rotation[2], mgl64.XYZ).Mat4()
		local := mgl64.Translate3D(bone.Position[0], bone.Position[1], bone.Position[2]).Mul4(rot)

		// Chain with parent
		if bone.Parent >= 0 && bone.Parent < i {
			worlds[i] = worlds[bone.Parent].Mul4(local)
		} else {
			worlds[i] = local
		}
	}
	return worlds
}

// ApplyTransforms moves mesh vertices from bone space into model space.
// Rigid skinning: every vertex belongs to bone 0.
func ApplyTransforms(m *mesh.Mesh, bones []Bone) {
	if len(bones) == 0 {
		return
	}

	world := BuildWorldMatrices(bones)[0]
	if world.ApproxEqualThreshold(mgl64.Ident4(), 1e-8) {
		return
	}

	normalMat := world.Mat3()
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Pos = world.Mul4x1(v.Pos.Vec4(1)).Vec3()
		v.Normal = normalMat.Mul3x1(v.Normal).Normalize()
	}
}
