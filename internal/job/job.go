// Package job runs conversions: read a container, decode it, assemble the
// model document and write the result.
package job

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/mdlconv/internal/config"
	"github.com/Faultbox/mdlconv/pkg/gltfexport"
	"github.com/Faultbox/mdlconv/pkg/model"
	"github.com/Faultbox/mdlconv/pkg/owmdl"
)

var (
	// ErrOutputExists is returned when the output file exists and overwrite is off.
	ErrOutputExists = errors.New("output file exists")

	// ErrNoCollision is returned by Physics when the mesh has no collision-only submeshes.
	ErrNoCollision = errors.New("mesh has no collision geometry")
)

// Result describes one finished job.
type Result struct {
	Input    string
	Output   string
	Size     int64
	Failures []model.Failure // chunks that decoded as absent
	Err      error
}

// Runner converts files according to a config.
type Runner struct {
	cfg *config.Config
	log *zap.Logger
}

// New creates a runner. A nil logger disables logging.
func New(cfg *config.Config, log *zap.Logger) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, log: log}
}

// Options returns the assembler options for an input file. The model name
// defaults to the file's base name.
func (r *Runner) Options(input string) owmdl.Options {
	exp := r.cfg.Export
	opts := owmdl.Options{
		ExcludeCollision: exp.ExcludeCollision,
		SingleLOD:        exp.SingleLOD,
		LegacyScale:      exp.LegacyScale,
		Name:             exp.Name,
		Variant:          exp.Variant,
		Logger:           r.log,
	}
	if len(exp.LODs) > 0 {
		opts.AllowedLODs = make([]uint8, len(exp.LODs))
		for i, lod := range exp.LODs {
			opts.AllowedLODs[i] = uint8(lod)
		}
	}
	if opts.Name == "" {
		opts.Name = stem(input)
	}
	return opts
}

// OutputPath returns where the result for input is written.
func (r *Runner) OutputPath(input, ext string) string {
	dir := r.cfg.Output.Dir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, stem(input)+ext)
}

// Load reads and decodes a container file.
func (r *Runner) Load(path string) (*model.Model, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	m, err := model.Load(buf, model.WithLogger(r.log.With(zap.String("file", filepath.Base(path)))))
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", path)
	}
	return m, nil
}

// Convert runs one conversion job in the configured output format.
func (r *Runner) Convert(input string) Result {
	res := Result{Input: input}

	m, err := r.Load(input)
	if err != nil {
		res.Err = err
		return res
	}
	res.Failures = m.Failures

	doc, err := owmdl.Assemble(m, r.Options(input))
	if err != nil {
		res.Err = errors.Wrapf(err, "assemble %s", input)
		return res
	}

	res.Output = r.OutputPath(input, r.cfg.Extension())
	switch r.cfg.Output.Format {
	case config.FormatGLTF, config.FormatGLB:
		exported, err := gltfexport.Export(doc)
		if err != nil {
			res.Err = errors.Wrapf(err, "export %s", input)
			return res
		}
		binary := r.cfg.Output.Format == config.FormatGLB
		res.Size, res.Err = r.write(res.Output, func(f *os.File) error {
			return gltfexport.Write(f, exported.Doc, binary)
		})
	default:
		res.Size, res.Err = r.write(res.Output, func(f *os.File) error {
			_, err := doc.WriteTo(f)
			return err
		})
	}

	if res.Err == nil {
		r.log.Info("converted",
			zap.String("input", input),
			zap.String("output", res.Output),
			zap.Int64("bytes", res.Size),
			zap.Int("submeshes", len(doc.Submeshes)),
			zap.Int("failed_chunks", len(res.Failures)))
	}
	return res
}

// Physics writes the collision geometry of a container as a physics document.
func (r *Runner) Physics(input string) Result {
	res := Result{Input: input}

	m, err := r.Load(input)
	if err != nil {
		res.Err = err
		return res
	}
	res.Failures = m.Failures

	if m.Mesh == nil {
		res.Err = errors.Wrapf(&owmdl.MissingRequiredChunkError{Name: "mesh"}, "physics %s", input)
		return res
	}
	p := owmdl.PhysicsFromMesh(m.Mesh)
	if p == nil {
		res.Err = errors.Wrapf(ErrNoCollision, "physics %s", input)
		return res
	}

	res.Output = r.OutputPath(input, ".physics.owmdl")
	res.Size, res.Err = r.write(res.Output, func(f *os.File) error {
		_, err := f.Write(owmdl.EncodePhysics(p))
		return err
	})
	if res.Err == nil {
		r.log.Info("wrote physics mesh",
			zap.String("output", res.Output),
			zap.Int("vertices", len(p.Positions)),
			zap.Int("triangles", len(p.Triangles)))
	}
	return res
}

// RunBatch converts inputs one after another. Each job has its own decode
// state; a failure does not stop the batch.
func (r *Runner) RunBatch(inputs []string) []Result {
	results := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		res := r.Convert(in)
		if res.Err != nil {
			r.log.Error("conversion failed", zap.String("input", in), zap.Error(res.Err))
		}
		results = append(results, res)
	}
	return results
}

func (r *Runner) write(path string, fill func(*os.File) error) (int64, error) {
	if !r.cfg.Output.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return 0, errors.Wrapf(ErrOutputExists, "write %s", path)
		}
	}
	n, err := WriteAtomic(path, fill)
	if err != nil {
		return 0, errors.Wrapf(err, "write %s", path)
	}
	return n, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
