// Package model decodes a whole container into a Model in two phases:
// independent chunks first, then chunks that depend on them.
package model

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/mdlconv/pkg/chunked"
	"github.com/Faultbox/mdlconv/pkg/formats"
)

// Failure records a chunk that could not be decoded. The chunk is treated
// as absent.
type Failure struct {
	Tag    chunked.Tag
	Index  int    // directory position
	Offset uint64 // absolute payload offset
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("chunk %d (%s at 0x%x): %v", f.Index, f.Tag, f.Offset, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Model is the decoded content of one container. Singleton kinds hold the
// first occurrence of their tag and are nil when absent or failed.
type Model struct {
	Directory  *chunked.Container
	Mesh       *formats.Mesh
	Materials  *formats.Materials
	Skeleton   *formats.Skeleton
	Hardpoints *formats.Hardpoints
	Collision  *formats.Collision
	Cloth      *formats.Cloth
	Strings    []*formats.StringTable
	Sounds     []*formats.SoundBindings
	Failures   []Failure
	Skipped    []chunked.Descriptor // chunks without a decoder
}

// Failed reports whether decoding a chunk with tag failed.
func (m *Model) Failed(tag chunked.Tag) bool {
	for _, f := range m.Failures {
		if f.Tag == tag {
			return true
		}
	}
	return false
}

// Err joins all chunk failures, or returns nil.
func (m *Model) Err() error {
	errs := make([]error, len(m.Failures))
	for i, f := range m.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Option configures Load.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	root    chunked.Tag
	scanner chunked.Scanner
}

// WithLogger sets the logger used for chunk diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRoot limits decoding to chunks grouped under root.
func WithRoot(root chunked.Tag) Option {
	return func(o *options) {
		o.root = root
	}
}

// WithScanner replaces the container index reader.
func WithScanner(s chunked.Scanner) Option {
	return func(o *options) {
		if s != nil {
			o.scanner = s
		}
	}
}
