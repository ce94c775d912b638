package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/go-logr/logr"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/eventgraph/internal/ir"
)

// File base names looked up in an events directory.
const (
	DependenciesBase = "dependencies"
	DefinitionBase   = "definition"
)

// Result holds everything decoded from an events directory.
type Result struct {
	Dir              string
	Events           []ir.EventRecord // in folder-name order
	Declaration      ir.Declaration
	DependenciesFile string
	FolderCount      int
}

// Loader reads events directories.
type Loader struct {
	log         logr.Logger
	mode        LoadMode
	concurrency int
}

// New returns a Loader configured by opts.
func New(opts ...Option) *Loader {
	l := &Loader{
		log:         logr.Discard(),
		mode:        LoadModeFailFast,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load is shorthand for New(opts...).Load(ctx, dir).
func Load(ctx context.Context, dir string, opts ...Option) (*Result, error) {
	return New(opts...).Load(ctx, dir)
}

// Load discovers the dependencies file and every event folder under dir and
// decodes them. In LoadModeCollectAll, definition errors are combined with
// multierr; use multierr.Errors to split them. Directory-level errors are
// always returned immediately.
func (l *Loader) Load(ctx context.Context, dir string) (*Result, error) {
	log := l.log.WithValues("dir", dir)

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: dir, Message: "events directory not found"}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: dir, Message: "error accessing events directory", Err: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: dir, Message: "not a directory"}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Path: dir, Message: "error scanning directory", Err: err}
	}

	var folders, depFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			folders = append(folders, name)
			continue
		}
		if isCandidate(name, DependenciesBase, DependenciesExtensions) {
			depFiles = append(depFiles, filepath.Join(dir, name))
		}
	}

	switch len(depFiles) {
	case 0:
		return nil, &LoadError{Code: ErrCodeNoDependencies, Path: dir,
			Message: fmt.Sprintf("no %s file found (expected one of %s)", DependenciesBase,
				strings.Join(candidateNames(DependenciesBase, DependenciesExtensions), ", "))}
	case 1:
	default:
		return nil, &LoadError{Code: ErrCodeAmbiguousFile, Path: dir,
			Message: fmt.Sprintf("more than one %s file: %s", DependenciesBase, strings.Join(baseNames(depFiles), ", "))}
	}

	depPath := depFiles[0]
	data, err := os.ReadFile(depPath)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Path: depPath, Message: "reading file", Err: err}
	}
	decl, err := DecodeDeclaration(depPath, data)
	if err != nil {
		return nil, err
	}
	log.V(1).Info("decoded dependencies", "file", filepath.Base(depPath), "declared", len(decl))

	events, err := l.loadDefinitions(ctx, dir, folders)
	if err != nil {
		return nil, err
	}

	log.Info("loaded events directory", "events", len(events), "declared", len(decl))

	return &Result{
		Dir:              dir,
		Events:           events,
		Declaration:      decl,
		DependenciesFile: depPath,
		FolderCount:      len(folders),
	}, nil
}

// loadDefinitions decodes one definition per folder with bounded
// parallelism. Output order matches folders. In fail-fast mode the error
// returned is always the one for the first failing folder in order; folders
// after a known failure are skipped.
func (l *Loader) loadDefinitions(ctx context.Context, dir string, folders []string) ([]ir.EventRecord, error) {
	records := make([]ir.EventRecord, len(folders))
	errs := make([]error, len(folders))

	var firstFailure atomic.Int64
	firstFailure.Store(int64(len(folders)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, folder := range folders {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if l.mode == LoadModeFailFast && int64(i) > firstFailure.Load() {
				return nil
			}
			rec, err := l.loadDefinition(filepath.Join(dir, folder))
			if err != nil {
				errs[i] = err
				lowerFirstFailure(&firstFailure, int64(i))
				return nil
			}
			records[i] = rec
			l.log.V(2).Info("decoded definition", "folder", folder, "id", rec.ID)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if l.mode == LoadModeFailFast {
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
		return records, nil
	}

	var combined error
	for _, err := range errs {
		combined = multierr.Append(combined, err)
	}
	if combined != nil {
		return nil, combined
	}
	return records, nil
}

// lowerFirstFailure sets v to i if i is smaller.
func lowerFirstFailure(v *atomic.Int64, i int64) {
	for {
		cur := v.Load()
		if i >= cur || v.CompareAndSwap(cur, i) {
			return
		}
	}
}

func (l *Loader) loadDefinition(folder string) (ir.EventRecord, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return ir.EventRecord{}, &LoadError{Code: ErrCodeScanError, Path: folder, Message: "error scanning folder", Err: err}
	}

	var candidates []string
	for _, entry := range entries {
		if !entry.IsDir() && isCandidate(entry.Name(), DefinitionBase, DefinitionExtensions) {
			candidates = append(candidates, filepath.Join(folder, entry.Name()))
		}
	}

	switch len(candidates) {
	case 0:
		return ir.EventRecord{}, &LoadError{Code: ErrCodeMissingDefinition, Path: folder,
			Message: fmt.Sprintf("no %s file in event folder", DefinitionBase)}
	case 1:
	default:
		return ir.EventRecord{}, &LoadError{Code: ErrCodeAmbiguousFile, Path: folder,
			Message: fmt.Sprintf("more than one %s file: %s", DefinitionBase, strings.Join(baseNames(candidates), ", "))}
	}

	data, err := os.ReadFile(candidates[0])
	if err != nil {
		return ir.EventRecord{}, &LoadError{Code: ErrCodeScanError, Path: candidates[0], Message: "reading file", Err: err}
	}
	return DecodeDefinition(candidates[0], data)
}

func isCandidate(name, base string, exts []string) bool {
	if strings.TrimSuffix(name, filepath.Ext(name)) != base {
		return false
	}
	return slices.Contains(exts, ext(name))
}

func candidateNames(base string, exts []string) []string {
	names := make([]string, len(exts))
	for i, e := range exts {
		names[i] = base + e
	}
	return names
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}
