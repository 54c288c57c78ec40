package gen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/huandu/xstrings"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/sqlproc/compiler/load"
)

// Writer renders generation units to disk with parallel execution. Output
// is deterministic: units are written in sorted order and each file is a
// pure function of its unit.
type Writer struct {
	emitter *Emitter
	target  string
	workers int
}

// NewWriter creates a writer from the given config.
func NewWriter(cfg *Config) *Writer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Writer{
		emitter: NewEmitter(cfg),
		target:  cfg.Target,
		workers: workers,
	}
}

// UnitFileName returns the output file name of a unit. The name override
// wins over the derived interface name.
func UnitFileName(u *Unit) string {
	name := u.OutName
	if name == "" {
		name = u.Name
	}
	return "zz_" + xstrings.ToSnakeCase(name) + "_gen.go"
}

// WriteAll renders and writes every unit in parallel. Each file lands next
// to its source package unless a target directory overrides it.
func (w *Writer) WriteAll(ctx context.Context, units []*Unit) error {
	sorted := make([]*Unit, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].PkgPath != sorted[j].PkgPath {
			return sorted[i].PkgPath < sorted[j].PkgPath
		}
		return sorted[i].Name < sorted[j].Name
	})

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, u := range sorted {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeUnit(u)
			}
		})
	}
	return eg.Wait()
}

// writeUnit renders one unit and writes it to its output path.
func (w *Writer) writeUnit(u *Unit) error {
	name := UnitFileName(u)
	f, err := w.emitter.EmitUnit(u)
	if err != nil {
		return NewGenerationError(u.Name, name, "emit unit", err)
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return NewGenerationError(u.Name, name, "render unit", err)
	}
	dir := u.Dir
	if w.target != "" {
		dir = w.target
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewGenerationError(u.Name, name, "create output directory", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return NewGenerationError(u.Name, name, "write file", err)
	}
	return nil
}

// Generate runs the whole pipeline: load the annotated interfaces matched
// by the patterns, build one unit per enclosing interface and write every
// output file.
func Generate(ctx context.Context, cfg *Config, patterns ...string) error {
	ifaces, err := load.LoadWithFlags(cfg.BuildFlags, patterns...)
	if err != nil {
		return err
	}
	units := make([]*Unit, 0, len(ifaces))
	for _, iface := range ifaces {
		units = append(units, NewUnit(iface))
	}
	return NewWriter(cfg).WriteAll(ctx, units)
}
