package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/harshul/project-compass/internal/doctor"
	"github.com/harshul/project-compass/internal/project"
)

// Enricher refines base records with framework detection.
type Enricher interface {
	Enrich(rec project.Record) project.Record
}

// Config configures a Resolver. Zero fields take defaults.
type Config struct {
	Schemas     []Schema
	Matcher     *Matcher
	Enricher    Enricher
	Checker     *doctor.Checker
	Logger      *slog.Logger
	Concurrency int
}

// Resolver turns a directory tree into ranked project records.
type Resolver struct {
	schemas     []Schema
	matcher     Matcher
	enricher    Enricher
	checker     *doctor.Checker
	logger      *slog.Logger
	concurrency int
}

// NewResolver creates a resolver from cfg.
func NewResolver(cfg Config) *Resolver {
	r := &Resolver{
		schemas:     cfg.Schemas,
		matcher:     DefaultMatcher(),
		enricher:    cfg.Enricher,
		checker:     cfg.Checker,
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
	}
	if r.schemas == nil {
		r.schemas = DefaultSchemas()
	}
	if cfg.Matcher != nil {
		r.matcher = *cfg.Matcher
	}
	if r.checker == nil {
		r.checker = doctor.NewChecker()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.concurrency <= 0 {
		r.concurrency = runtime.NumCPU()
	}
	return r
}

// candidate is one (schema, directory) pair awaiting a build.
type candidate struct {
	schema   Schema
	manifest Manifest
	record   *project.Record
}

// Resolve scans root and returns every detected project, highest priority
// first. Only an inaccessible root (or cancellation) is an error; a manifest
// that fails to parse just means its schema does not match that directory.
func (r *Resolver) Resolve(ctx context.Context, root string) ([]project.Record, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}

	idx, err := r.matcher.Scan(ctx, abs, Patterns(r.schemas))
	if err != nil {
		return nil, err
	}

	var candidates []*candidate
	for _, s := range r.schemas {
		for _, m := range idx.Find(s.Files) {
			candidates = append(candidates, &candidate{schema: s, manifest: m})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c.record = r.build(c.schema, c.manifest)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := r.merge(candidates)

	if r.enricher != nil {
		for i := range records {
			records[i] = r.enricher.Enrich(records[i])
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Priority > records[j].Priority
	})

	r.logger.Debug("scan complete", "root", abs, "manifests", idx.Len(), "projects", len(records))
	return records, nil
}

// build runs a schema builder, turning failures into "no match".
func (r *Resolver) build(s Schema, m Manifest) *project.Record {
	rec, err := s.Build(s, m.Dir, m)
	if err != nil {
		var perr *ManifestParseError
		if errors.As(err, &perr) {
			r.logger.Warn("skipping manifest", "type", s.Type, "path", perr.Path, "error", perr.Err)
		} else {
			r.logger.Warn("schema build failed", "type", s.Type, "dir", m.Dir, "error", err)
		}
		return nil
	}
	if rec == nil {
		return nil
	}
	rec.MissingBinaries = r.checker.Missing(s.Binaries)
	return rec
}

// merge keeps one record per directory in declaration order. A directory
// already claimed by an equal or higher priority schema is not replaced; a
// replaced record keeps the slot of the one it replaces.
func (r *Resolver) merge(candidates []*candidate) []project.Record {
	var records []project.Record
	slots := make(map[string]int)
	for _, c := range candidates {
		if c.record == nil {
			continue
		}
		i, ok := slots[c.record.Path]
		if !ok {
			slots[c.record.Path] = len(records)
			records = append(records, *c.record)
			continue
		}
		if records[i].Priority >= c.record.Priority {
			continue
		}
		records[i] = *c.record
	}
	return records
}
