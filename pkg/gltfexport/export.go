// Package gltfexport converts model documents to glTF 2.0 for external
// tooling.
package gltfexport

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/mdlconv/pkg/math"
	"github.com/Faultbox/mdlconv/pkg/owmdl"
)

// Result is an exported glTF document with the node index of every bone.
type Result struct {
	Doc       *gltf.Document
	BoneNodes []uint32
	Skin      *uint32 // nil without bones
}

// Export builds a glTF document: bones become a node hierarchy, each
// submesh a mesh node, and attachments children of their bone.
func Export(doc *owmdl.Document) (*Result, error) {
	res := &Result{Doc: gltf.NewDocument()}
	g := res.Doc
	scene := g.Scenes[0]

	boneByName := make(map[string]uint32, len(doc.Bones))
	for i, b := range doc.Bones {
		idx := uint32(len(g.Nodes))
		g.Nodes = append(g.Nodes, &gltf.Node{
			Name:        b.Name,
			Translation: b.Position,
			Rotation:    b.Rotation,
			Scale:       b.Scale,
		})
		res.BoneNodes = append(res.BoneNodes, idx)
		boneByName[b.Name] = idx
		if int(b.Parent) < 0 || int(b.Parent) >= len(doc.Bones) {
			return nil, fmt.Errorf("bone %d: parent %d out of range", i, b.Parent)
		}
	}
	for i := range doc.Bones {
		j := i
		for steps := 0; int(doc.Bones[j].Parent) != j; steps++ {
			if steps >= len(doc.Bones) {
				return nil, fmt.Errorf("bone %d: parent chain does not reach a root", i)
			}
			j = int(doc.Bones[j].Parent)
		}
	}
	for i, b := range doc.Bones {
		if int(b.Parent) == i {
			scene.Nodes = append(scene.Nodes, res.BoneNodes[i])
			continue
		}
		parent := g.Nodes[res.BoneNodes[b.Parent]]
		parent.Children = append(parent.Children, res.BoneNodes[i])
	}

	if len(doc.Bones) > 0 {
		ibm := modeler.WriteAccessor(g, gltf.TargetNone, inverseBindMatrices(doc.Bones))
		g.Skins = append(g.Skins, &gltf.Skin{
			Name:                doc.Name,
			Joints:              res.BoneNodes,
			Skeleton:            gltf.Index(res.BoneNodes[0]),
			InverseBindMatrices: gltf.Index(ibm),
		})
		res.Skin = gltf.Index(uint32(len(g.Skins) - 1))
	}

	for _, s := range doc.Submeshes {
		meshIdx := writeSubmesh(g, s)
		node := &gltf.Node{Name: s.Name, Mesh: gltf.Index(meshIdx)}
		if res.Skin != nil && skinned(s) {
			node.Skin = gltf.Index(*res.Skin)
		}
		scene.Nodes = append(scene.Nodes, uint32(len(g.Nodes)))
		g.Nodes = append(g.Nodes, node)
	}

	for _, a := range doc.Attachments {
		idx := uint32(len(g.Nodes))
		g.Nodes = append(g.Nodes, &gltf.Node{
			Name:        a.Name,
			Translation: a.Position,
			Rotation:    a.Rotation,
			Scale:       [3]float32{1, 1, 1},
		})
		bone := a.ParentBone
		if bone == "" {
			bone = a.Bone
		}
		if parent, ok := boneByName[bone]; ok {
			g.Nodes[parent].Children = append(g.Nodes[parent].Children, idx)
		} else {
			scene.Nodes = append(scene.Nodes, idx)
		}
	}

	return res, nil
}

func skinned(s owmdl.Submesh) bool {
	for _, v := range s.Vertices {
		if v.Skinned {
			return true
		}
	}
	return false
}

func writeSubmesh(g *gltf.Document, s owmdl.Submesh) uint32 {
	n := len(s.Vertices)
	positions := make([][3]float32, n)
	normals := make([][3]float32, n)
	hasNormals := false
	for i, v := range s.Vertices {
		positions[i] = v.Position
		// Documents store normals negated.
		normals[i] = [3]float32{-v.Normal[0], -v.Normal[1], -v.Normal[2]}
		if normals[i] != ([3]float32{}) {
			hasNormals = true
		}
	}

	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(g, positions),
	}
	if hasNormals {
		attributes["NORMAL"] = modeler.WriteNormal(g, normals)
	}

	for c := 0; c < int(s.UVCount); c++ {
		uvs := make([][2]float32, n)
		for i, v := range s.Vertices {
			if c < len(v.UVs) {
				uvs[i] = v.UVs[c]
			}
		}
		attributes[fmt.Sprintf("TEXCOORD_%d", c)] = modeler.WriteTextureCoord(g, uvs)
	}

	if skinned(s) {
		joints := make([][4]uint16, n)
		weights := make([][4]float32, n)
		for i, v := range s.Vertices {
			if !v.Skinned {
				weights[i] = [4]float32{1, 0, 0, 0}
				continue
			}
			joints[i] = v.Bones
			weights[i] = v.Weights
		}
		attributes["JOINTS_0"] = modeler.WriteJoints(g, joints)
		attributes["WEIGHTS_0"] = modeler.WriteWeights(g, weights)
	}

	indices := make([]uint32, 0, 3*len(s.Triangles))
	for _, t := range s.Triangles {
		indices = append(indices, uint32(t[0]), uint32(t[1]), uint32(t[2]))
	}
	indicesAccessor := modeler.WriteIndices(g, indices)

	g.Meshes = append(g.Meshes, &gltf.Mesh{
		Name: s.Name,
		Primitives: []*gltf.Primitive{
			{
				Indices:    &indicesAccessor,
				Attributes: attributes,
			},
		},
	})
	return uint32(len(g.Meshes) - 1)
}

// inverseBindMatrices composes bone world transforms from the local TRS
// values and inverts them.
func inverseBindMatrices(bones []owmdl.Bone) [][4][4]float32 {
	world := make([]math.Mat4, len(bones))
	done := make([]bool, len(bones))
	visiting := make([]bool, len(bones))

	var resolve func(i int) math.Mat4
	resolve = func(i int) math.Mat4 {
		if done[i] {
			return world[i]
		}
		b := bones[i]
		local := math.Compose(math.Vec3FromArray(b.Position),
			math.Quat{X: b.Rotation[0], Y: b.Rotation[1], Z: b.Rotation[2], W: b.Rotation[3]},
			math.Vec3FromArray(b.Scale))
		visiting[i] = true
		// A parent cycle is cut at the bone that closes it.
		if p := int(b.Parent); p != i && !visiting[p] {
			local = resolve(p).Mul(local)
		}
		visiting[i] = false
		world[i], done[i] = local, true
		return local
	}

	out := make([][4][4]float32, len(bones))
	for i := range bones {
		inv := mgl32.Mat4(resolve(i)).Inv()
		for c := 0; c < 4; c++ {
			copy(out[i][c][:], inv[c*4:c*4+4])
		}
	}
	return out
}

// Write encodes the document as JSON glTF, or GLB when binary is set.
func Write(w io.Writer, doc *gltf.Document, binary bool) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	return enc.Encode(doc)
}
