// Command sqlproc generates database access code for annotated query
// interfaces. Configuration comes from sqlproc.yaml when present; flags
// override it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/syssam/sqlproc/compiler/gen"
)

// fileConfig mirrors the sqlproc.yaml layout.
type fileConfig struct {
	Packages []string `yaml:"packages"`
	Target   string   `yaml:"target"`
	Header   string   `yaml:"header"`
	Workers  int      `yaml:"workers"`
}

func main() {
	var (
		configPath = flag.String("config", "sqlproc.yaml", "configuration file path")
		target     = flag.String("target", "", "output directory (default: next to each source package)")
		header     = flag.String("header", "", "header comment for generated files")
		workers    = flag.Int("workers", 0, "number of parallel writers (default: GOMAXPROCS)")
		watch      = flag.Bool("watch", false, "watch source directories and regenerate on change")
	)
	flag.Parse()

	fc, err := readConfig(*configPath)
	if err != nil {
		fail(err)
	}
	if *target != "" {
		fc.Target = *target
	}
	if *header != "" {
		fc.Header = *header
	}
	if *workers > 0 {
		fc.Workers = *workers
	}
	if args := flag.Args(); len(args) > 0 {
		fc.Packages = args
	}
	if len(fc.Packages) == 0 {
		fc.Packages = []string{"./..."}
	}

	var opts []gen.Option
	if fc.Target != "" {
		opts = append(opts, gen.WithTarget(fc.Target))
	}
	if fc.Header != "" {
		opts = append(opts, gen.WithHeader(fc.Header))
	}
	if fc.Workers > 0 {
		opts = append(opts, gen.WithWorkers(fc.Workers))
	}
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		fail(err)
	}

	ctx := context.Background()
	if err := gen.Generate(ctx, cfg, fc.Packages...); err != nil {
		if !*watch {
			fail(err)
		}
		fmt.Fprintf(os.Stderr, "sqlproc: %v\n", err)
	}
	if *watch {
		if err := watchLoop(ctx, cfg, fc.Packages); err != nil {
			fail(err)
		}
	}
}

func readConfig(path string) (*fileConfig, error) {
	fc := &fileConfig{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlproc: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("sqlproc: parse config %s: %w", path, err)
	}
	return fc, nil
}

// watchLoop regenerates on source changes, debounced so editor save bursts
// trigger one run. Generated files are ignored to avoid feedback loops.
func watchLoop(ctx context.Context, cfg *gen.Config, patterns []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("sqlproc: create watcher: %w", err)
	}
	defer w.Close()
	if err := addDirs(w, "."); err != nil {
		return err
	}

	const debounce = 100 * time.Millisecond
	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			if err := gen.Generate(ctx, cfg, patterns...); err != nil {
				fmt.Fprintf(os.Stderr, "sqlproc: %v\n", err)
			} else {
				fmt.Fprintln(os.Stderr, "sqlproc: regenerated")
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "sqlproc: watch: %v\n", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".go") {
		return false
	}
	return !strings.HasPrefix(name, "zz_") || !strings.HasSuffix(name, "_gen.go")
}

// addDirs registers root and its subdirectories, skipping hidden trees and
// vendored code.
func addDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("sqlproc: watch %s: %w", path, err)
		}
		return nil
	})
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "sqlproc: %v\n", err)
	os.Exit(1)
}
