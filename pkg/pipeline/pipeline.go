// Package pipeline runs the harvest → build → classify pipeline.
//
// The CLI and the HTTP server both go through a [Runner] so the stages are
// wired identically everywhere:
//
//  1. Harvest: load the raw documents from the cache, or fetch them from the registry
//  2. Build: extract one record per document into a table
//  3. Classify: decompose every subject, count it, and fold the paths into a hierarchy
//
// # Usage
//
//	store := harvest.NewStore(cache.NewPathCache(), re3data.NewClient(re3data.Config{}), logger)
//	runner := pipeline.NewRunner(store, logger)
//	result, err := runner.Run(ctx, pipeline.Options{CacheKey: "./data/re3data_repo_dump"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tree := result.Tree // ready for a checkbox-tree control
//
// Results are values: nothing is kept on the Runner between runs.
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/re3facet/pkg/errors"
	"github.com/matzehuels/re3facet/pkg/hierarchy"
	"github.com/matzehuels/re3facet/pkg/registry"
	"github.com/matzehuels/re3facet/pkg/subject"
)

// DefaultCacheKey is the snapshot location used when Options.CacheKey is empty.
const DefaultCacheKey = "data/re3data_repo_dump"

// Options configures one pipeline run.
type Options struct {
	CacheKey      string `json:"cache_key,omitempty"`
	Refresh       bool   `json:"refresh,omitempty"`        // Ignore a cached snapshot and fetch again
	SkipMalformed bool   `json:"skip_malformed,omitempty"` // Skip records without id or name instead of failing
	Counts        bool   `json:"counts,omitempty"`         // Append subject counts to tree labels
}

// ValidateAndSetDefaults fills unset options and validates the rest.
func (o *Options) ValidateAndSetDefaults() error {
	if o.CacheKey == "" {
		o.CacheKey = DefaultCacheKey
	}
	if len(o.CacheKey) > 1024 {
		return errors.New(errors.ErrCodeInvalidInput, "cache key too long (max 1024 characters)")
	}
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and exports.
	RunID uuid.UUID

	// Documents are the raw documents, verbatim.
	Documents []registry.RawDocument

	// Table holds one record per well-formed document.
	Table registry.Table

	// Subjects is the per-subject frequency table.
	Subjects []subject.Frequency

	// Hierarchy is the assembled subject tree.
	Hierarchy *hierarchy.Node

	// Tree is the checkbox-tree projection of Hierarchy.
	Tree []hierarchy.TreeNode

	// Diagnostics lists recoverable problems: malformed subjects, and
	// malformed records when SkipMalformed is set.
	Diagnostics []error

	// CacheHit reports whether the documents came from the cache.
	CacheHit bool

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Documents         int
	Records           int
	SkippedRecords    int
	Subjects          int
	MalformedSubjects int
	HarvestTime       time.Duration
	BuildTime         time.Duration
	ClassifyTime      time.Duration
}

// Total returns the summed stage durations.
func (s Stats) Total() time.Duration {
	return s.HarvestTime + s.BuildTime + s.ClassifyTime
}
