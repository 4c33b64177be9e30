package formats

import "github.com/Faultbox/mdlconv/pkg/chunked"

// SoundBinding links a model instance to a sound record.
type SoundBinding struct {
	InstanceKey uint64
	_           uint64
	AuxKey      uint64
	_           uint64
	SoundKey    uint64
	Unknown     uint32
	_           uint32
}

// SoundBindings is a decoded DNBS chunk.
type SoundBindings struct {
	Bindings []SoundBinding
}

func (*SoundBindings) Kind() Kind { return KindSounds }
func (*SoundBindings) isChunk()   {}

// DecodeSoundBindings decodes a DNBS payload.
func DecodeSoundBindings(payload []byte) (*SoundBindings, error) {
	d := newDecoder(chunked.TagSounds, payload)

	var hdr tableHeader
	if err := d.read(&hdr); err != nil {
		return nil, err
	}
	bindings, err := readTable[SoundBinding](d, "sound bindings", hdr.Offset, int(hdr.Count))
	if err != nil {
		return nil, err
	}
	return &SoundBindings{Bindings: bindings}, nil
}
