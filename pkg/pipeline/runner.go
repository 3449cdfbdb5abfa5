package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/re3facet/pkg/harvest"
	"github.com/matzehuels/re3facet/pkg/hierarchy"
	"github.com/matzehuels/re3facet/pkg/observability"
	"github.com/matzehuels/re3facet/pkg/registry"
	"github.com/matzehuels/re3facet/pkg/subject"
)

// Runner executes the pipeline against a harvest store.
//
// The Runner keeps no results; multiple goroutines can use the same Runner
// with different options.
type Runner struct {
	Store  *harvest.Store
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(store *harvest.Store, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Store: store, Logger: logger}
}

// Run executes harvest → build → classify.
//
// Transport and cache failures abort the run, as does the first malformed
// record unless SkipMalformed is set. Malformed subjects never abort; they
// are logged and collected in Result.Diagnostics.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.New()}
	logger := r.Logger.With("run", result.RunID.String()[:8])

	// Stage 1: Harvest
	harvestStart := time.Now()
	docs, hit, err := r.Harvest(ctx, opts)
	result.Stats.HarvestTime = time.Since(harvestStart)
	if err != nil {
		return nil, fmt.Errorf("harvest: %w", err)
	}
	result.Documents = docs
	result.CacheHit = hit
	result.Stats.Documents = len(docs)

	// Stage 2: Build
	buildStart := time.Now()
	table, skipped, err := Build(docs, opts.SkipMalformed)
	result.Stats.BuildTime = time.Since(buildStart)
	observability.Pipeline().OnBuildComplete(ctx, table.Len(), len(skipped), result.Stats.BuildTime, err)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	for _, e := range skipped {
		logger.Warn("skipped record", "err", e)
	}
	result.Table = table
	result.Diagnostics = append(result.Diagnostics, skipped...)
	result.Stats.Records = table.Len()
	result.Stats.SkippedRecords = len(skipped)

	logger.Info("built table",
		"records", table.Len(),
		"skipped", len(skipped),
		"duration", result.Stats.BuildTime)

	// Stage 3: Classify
	classifyStart := time.Now()
	var malformed []error
	result.Subjects = subject.Frequencies(table, func(err error) {
		logger.Warn("excluded subject", "err", err)
		malformed = append(malformed, err)
	})
	result.Hierarchy = hierarchy.FromFrequencies(result.Subjects)
	result.Tree = Tree(result.Hierarchy, opts.Counts)
	result.Diagnostics = append(result.Diagnostics, malformed...)
	result.Stats.ClassifyTime = time.Since(classifyStart)
	result.Stats.Subjects = len(result.Subjects)
	result.Stats.MalformedSubjects = len(malformed)
	observability.Pipeline().OnClassifyComplete(ctx, len(result.Subjects), len(malformed), result.Stats.ClassifyTime)

	logger.Info("classified subjects",
		"subjects", len(result.Subjects),
		"nodes", result.Hierarchy.Size(),
		"malformed", len(malformed),
		"duration", result.Stats.ClassifyTime)

	return result, nil
}

// Harvest loads or fetches the raw documents.
func (r *Runner) Harvest(ctx context.Context, opts Options) ([]registry.RawDocument, bool, error) {
	if r.Store == nil {
		return nil, false, fmt.Errorf("runner has no harvest store")
	}
	store := *r.Store
	store.Refresh = store.Refresh || opts.Refresh

	hooks := observability.Pipeline()
	hooks.OnHarvestStart(ctx, opts.CacheKey)
	start := time.Now()

	docs, hit, err := store.LoadOrFetch(ctx, opts.CacheKey)
	duration := time.Since(start)
	hooks.OnHarvestComplete(ctx, opts.CacheKey, len(docs), hit, duration, err)
	if err != nil {
		return nil, false, err
	}

	source := "registry"
	if hit {
		source = "cache"
	}
	r.Logger.Info("loaded documents",
		"count", len(docs),
		"source", source,
		"duration", duration)
	return docs, hit, nil
}

// Build builds the table, failing fast unless skipMalformed is set.
// Skipped records are returned as errors alongside the table.
func Build(docs []registry.RawDocument, skipMalformed bool) (registry.Table, []error, error) {
	if skipMalformed {
		table, errs := registry.BuildLenient(docs)
		return table, errs, nil
	}
	table, err := registry.Build(docs)
	return table, nil, err
}

// Tree serializes root for a checkbox-tree control.
func Tree(root *hierarchy.Node, counts bool) []hierarchy.TreeNode {
	if counts {
		return hierarchy.ToTreeList(root, hierarchy.WithCounts())
	}
	return hierarchy.ToTreeList(root)
}
