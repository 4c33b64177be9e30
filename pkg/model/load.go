package model

import (
	"go.uber.org/zap"

	"github.com/Faultbox/mdlconv/pkg/chunked"
	"github.com/Faultbox/mdlconv/pkg/formats"
)

// capture is a dependent chunk held back for phase two. raw is an owned
// copy of the payload.
type capture struct {
	desc chunked.Descriptor
	raw  []byte
}

// Load scans buf and decodes every known chunk. Only a failure to read the
// container index is returned as an error; chunk failures are collected in
// Model.Failures.
func Load(buf []byte, opts ...Option) (*Model, error) {
	o := options{
		logger:  zap.NewNop(),
		scanner: chunked.DefaultScanner,
	}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger

	dir, err := o.scanner.Scan(buf)
	if err != nil {
		return nil, err
	}
	log.Debug("scanned container", zap.Int("chunks", len(dir.Descriptors)), zap.Int("bytes", len(buf)))

	m := &Model{Directory: dir}
	seen := make(map[chunked.Tag]bool)
	var captures []capture

	// Phase 1: independent chunks.
	for _, d := range dir.Descriptors {
		if !o.root.IsZero() && d.Root != o.root {
			continue
		}
		if !formats.Known(d.Tag) {
			log.Debug("skipping unknown chunk", zap.Stringer("tag", d.Tag), zap.Int("index", d.Index))
			m.Skipped = append(m.Skipped, d)
			continue
		}
		if singleton(d.Tag) {
			if seen[d.Tag] {
				log.Debug("ignoring repeated chunk", zap.Stringer("tag", d.Tag), zap.Int("index", d.Index))
				continue
			}
			seen[d.Tag] = true
		}

		payload, err := dir.Payload(d)
		if err != nil {
			m.fail(log, d, err)
			continue
		}

		if formats.Dependent(d.Tag) {
			raw := make([]byte, len(payload))
			copy(raw, payload)
			captures = append(captures, capture{desc: d, raw: raw})
			continue
		}

		chunk, err := formats.Decode(d.Tag, payload, formats.Context{})
		if err != nil {
			m.fail(log, d, err)
			continue
		}
		m.attach(chunk)
	}

	// Phase 2: chunks that need facts from phase 1.
	ctx := formats.ContextFor(m.Skeleton)
	for _, c := range captures {
		chunk, err := formats.Decode(c.desc.Tag, c.raw, ctx)
		if err != nil {
			m.fail(log, c.desc, err)
			continue
		}
		m.attach(chunk)
	}

	log.Debug("decoded container",
		zap.Bool("mesh", m.Mesh != nil),
		zap.Bool("skeleton", m.Skeleton != nil),
		zap.Int("strings", len(m.Strings)),
		zap.Int("failures", len(m.Failures)))

	return m, nil
}

func singleton(tag chunked.Tag) bool {
	return tag != chunked.TagStrings && tag != chunked.TagSounds
}

func (m *Model) fail(log *zap.Logger, d chunked.Descriptor, err error) {
	f := Failure{Tag: d.Tag, Index: d.Index, Offset: d.Offset, Err: err}
	m.Failures = append(m.Failures, f)
	log.Warn("chunk decode failed",
		zap.Stringer("tag", d.Tag),
		zap.Int("index", d.Index),
		zap.Uint64("offset", d.Offset),
		zap.Error(err))
}

func (m *Model) attach(c formats.Chunk) {
	switch v := c.(type) {
	case *formats.Mesh:
		m.Mesh = v
	case *formats.Materials:
		m.Materials = v
	case *formats.Skeleton:
		m.Skeleton = v
	case *formats.Hardpoints:
		m.Hardpoints = v
	case *formats.Collision:
		m.Collision = v
	case *formats.Cloth:
		m.Cloth = v
	case *formats.StringTable:
		m.Strings = append(m.Strings, v)
	case *formats.SoundBindings:
		m.Sounds = append(m.Sounds, v)
	}
}
