package owmdl

import (
	"io"

	"github.com/Faultbox/mdlconv/pkg/cursor"
)

// Encode serializes the document in its version's layout.
func (d *Document) Encode() []byte {
	w := cursor.NewWriter()
	physics := d.IsPhysics()

	w.WriteU16(d.Major)
	w.WriteU16(d.Minor)
	w.WriteOptionalString(d.Name)
	w.WriteOptionalString(d.Variant)
	if !physics {
		w.WriteI32(headerSize)
	}
	w.WriteU16(uint16(len(d.Bones)))
	w.WriteU32(uint32(len(d.Submeshes)))
	w.WriteI32(int32(len(d.Attachments)))
	if !physics {
		w.WriteI32(int32(len(d.Hitboxes)))
	}

	for _, b := range d.Bones {
		w.WriteString(b.Name)
		w.WriteI16(b.Parent)
		w.WriteF32s(b.Position[:]...)
		w.WriteF32s(b.Scale[:]...)
		w.WriteF32s(b.Rotation[:]...)
	}

	for _, s := range d.Submeshes {
		w.WriteString(s.Name)
		w.WriteU64(s.Material)
		w.WriteU8(s.UVCount)
		w.WriteI32(int32(len(s.Vertices)))
		w.WriteI32(int32(len(s.Triangles)))
		for _, v := range s.Vertices {
			writeVertex(w, v, int(s.UVCount))
		}
		for _, t := range s.Triangles {
			w.WriteU8(3)
			w.WriteI32(t[0])
			w.WriteI32(t[1])
			w.WriteI32(t[2])
		}
	}

	for _, a := range d.Attachments {
		w.WriteString(a.Name)
		w.WriteF32s(a.Position[:]...)
		w.WriteF32s(a.Rotation[:]...)
	}
	if !physics {
		for _, a := range d.Attachments {
			w.WriteString(a.Bone)
		}
		for _, h := range d.Hitboxes {
			w.WriteU32(h.NameID)
			w.WriteU32(h.AttachmentID)
			w.WriteF32s(h.Values[:]...)
		}
	}

	return w.Bytes()
}

func writeVertex(w *cursor.Writer, v Vertex, uvCount int) {
	w.WriteF32s(v.Position[:]...)
	w.WriteF32s(v.Normal[:]...)
	for c := 0; c < uvCount; c++ {
		var uv [2]float32
		if c < len(v.UVs) {
			uv = v.UVs[c]
		}
		w.WriteF32(uv[0])
		w.WriteF32(uv[1])
	}
	if !v.Skinned {
		w.WriteU8(0)
		return
	}
	w.WriteU8(SkinCount)
	for _, b := range v.Bones {
		w.WriteU16(b)
	}
	w.WriteF32s(v.Weights[:]...)
}

// WriteTo writes the encoded document to out.
func (d *Document) WriteTo(out io.Writer) (int64, error) {
	n, err := out.Write(d.Encode())
	return int64(n), err
}
