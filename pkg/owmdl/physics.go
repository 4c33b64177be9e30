package owmdl

import "github.com/Faultbox/mdlconv/pkg/formats"

// PhysicsMesh is collision geometry written as a single-submesh 1.1 document.
type PhysicsMesh struct {
	Positions [][3]float32
	Triangles [][3]int32
}

// PhysicsFromMesh gathers every collision-only submesh into one physics
// mesh, rebasing triangle indices. It returns nil when there are none.
func PhysicsFromMesh(mesh *formats.Mesh) *PhysicsMesh {
	if mesh == nil {
		return nil
	}
	var p *PhysicsMesh
	for i := range mesh.Submeshes {
		sm := &mesh.Submeshes[i]
		if !sm.IsCollisionOnly() {
			continue
		}
		if p == nil {
			p = &PhysicsMesh{}
		}
		base := int32(len(p.Positions))
		p.Positions = append(p.Positions, sm.Positions...)
		for _, t := range sm.Triangles {
			p.Triangles = append(p.Triangles, [3]int32{base + int32(t[0]), base + int32(t[1]), base + int32(t[2])})
		}
	}
	return p
}

// Document returns the 1.1 physics document for p.
func (p *PhysicsMesh) Document() *Document {
	sm := Submesh{
		Name:      "PhysicsModel",
		Vertices:  make([]Vertex, len(p.Positions)),
		Triangles: p.Triangles,
	}
	for i, pos := range p.Positions {
		sm.Vertices[i] = Vertex{Position: pos}
	}
	return &Document{
		Major:     PhysicsMajor,
		Minor:     PhysicsMinor,
		Submeshes: []Submesh{sm},
	}
}

// EncodePhysics serializes p as a 1.1 physics document.
func EncodePhysics(p *PhysicsMesh) []byte {
	return p.Document().Encode()
}

// Physics extracts the physics mesh from a decoded 1.1 document.
func (d *Document) Physics() (*PhysicsMesh, bool) {
	if !d.IsPhysics() || len(d.Submeshes) != 1 {
		return nil, false
	}
	sm := d.Submeshes[0]
	p := &PhysicsMesh{
		Positions: make([][3]float32, len(sm.Vertices)),
		Triangles: sm.Triangles,
	}
	for i, v := range sm.Vertices {
		p.Positions[i] = v.Position
	}
	return p, true
}
