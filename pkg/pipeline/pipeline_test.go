package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/matzehuels/re3facet/pkg/cache"
	rerrors "github.com/matzehuels/re3facet/pkg/errors"
	"github.com/matzehuels/re3facet/pkg/harvest"
	"github.com/matzehuels/re3facet/pkg/hierarchy"
	"github.com/matzehuels/re3facet/pkg/registry"
)

type staticFetcher struct {
	docs  []registry.RawDocument
	err   error
	calls int
}

func (f *staticFetcher) Harvest(context.Context) ([]registry.RawDocument, error) {
	f.calls++
	return f.docs, f.err
}

func record(id, name string, subjects ...string) registry.RawDocument {
	var b strings.Builder
	fmt.Fprintf(&b, `<r3d:re3data xmlns:r3d="%s"><r3d:repository>`, registry.Namespace)
	if id != "" {
		fmt.Fprintf(&b, "<r3d:re3data.orgIdentifier>%s</r3d:re3data.orgIdentifier>", id)
	}
	if name != "" {
		fmt.Fprintf(&b, "<r3d:repositoryName>%s</r3d:repositoryName>", name)
	}
	for _, s := range subjects {
		fmt.Fprintf(&b, "<r3d:subject>%s</r3d:subject>", s)
	}
	b.WriteString("</r3d:repository></r3d:re3data>")
	return registry.RawDocument(b.String())
}

func newTestRunner(t *testing.T, f harvest.Fetcher) (*Runner, string) {
	t.Helper()
	logger := log.New(io.Discard)
	store := harvest.NewStore(cache.NewPathCache(), f, logger)
	return NewRunner(store, logger), filepath.Join(t.TempDir(), "dump")
}

func TestRun(t *testing.T) {
	fetcher := &staticFetcher{docs: []registry.RawDocument{
		record("r3d1", "Alpha", "1 Humanities and Social Sciences", "10102 Classical Philology"),
		record("r3d2", "Beta", "10102 Classical Philology", "Unclassified"),
		record("r3d3", "Gamma", "2 Life Sciences"),
	}}
	runner, key := newTestRunner(t, fetcher)

	result, err := runner.Run(context.Background(), Options{CacheKey: key, Counts: true})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.RunID == uuid.Nil {
		t.Error("RunID should be set")
	}
	if result.CacheHit {
		t.Error("first run should not hit the cache")
	}
	if result.Table.Len() != 3 || result.Stats.Records != 3 {
		t.Errorf("records = %d, want 3", result.Table.Len())
	}
	if result.Stats.Subjects != 3 || result.Stats.MalformedSubjects != 1 {
		t.Errorf("stats = %+v, want 3 subjects and 1 malformed", result.Stats)
	}
	if len(result.Diagnostics) != 1 || !rerrors.Is(result.Diagnostics[0], rerrors.ErrCodeMalformedSubject) {
		t.Errorf("diagnostics = %v, want one malformed subject", result.Diagnostics)
	}

	want := []hierarchy.TreeNode{
		{Label: "1 Humanities and Social Sciences (1)", Value: "1", Children: []hierarchy.TreeNode{
			{Label: "1-01", Value: "1-01", Children: []hierarchy.TreeNode{
				{Label: "1-01-02 Classical Philology (2)", Value: "1-01-02"},
			}},
		}},
		{Label: "2 Life Sciences (1)", Value: "2"},
	}
	if diff := cmp.Diff(want, result.Tree); diff != "" {
		t.Errorf("Tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRunUsesCache(t *testing.T) {
	fetcher := &staticFetcher{docs: []registry.RawDocument{record("r3d1", "Alpha", "1 Humanities")}}
	runner, key := newTestRunner(t, fetcher)
	ctx := context.Background()

	first, err := runner.Run(ctx, Options{CacheKey: key})
	if err != nil {
		t.Fatal(err)
	}
	second, err := runner.Run(ctx, Options{CacheKey: key})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit || fetcher.calls != 1 {
		t.Errorf("second run: hit=%v calls=%d, want cache hit without fetching", second.CacheHit, fetcher.calls)
	}
	if diff := cmp.Diff(first.Table, second.Table); diff != "" {
		t.Errorf("cached run built a different table:\n%s", diff)
	}
	if first.RunID == second.RunID {
		t.Error("each run should get its own RunID")
	}

	if _, err := runner.Run(ctx, Options{CacheKey: key, Refresh: true}); err != nil {
		t.Fatal(err)
	}
	if fetcher.calls != 2 {
		t.Errorf("refresh should fetch again, calls = %d", fetcher.calls)
	}
	if runner.Store.Refresh {
		t.Error("Run must not change the runner's store")
	}
}

func TestRunMalformedRecord(t *testing.T) {
	docs := []registry.RawDocument{record("r3d1", "Alpha"), record("r3d2", ""), record("r3d3", "Gamma")}

	runner, key := newTestRunner(t, &staticFetcher{docs: docs})
	_, err := runner.Run(context.Background(), Options{CacheKey: key})
	var me *registry.MalformedRecordError
	if !errors.As(err, &me) || me.Index != 1 {
		t.Fatalf("Run() error = %v, want malformed record at index 1", err)
	}

	result, err := runner.Run(context.Background(), Options{CacheKey: key, SkipMalformed: true})
	if err != nil {
		t.Fatalf("Run(SkipMalformed) error: %v", err)
	}
	if result.Table.Len() != 2 || result.Stats.SkippedRecords != 1 {
		t.Errorf("records = %d, skipped = %d; want 2, 1", result.Table.Len(), result.Stats.SkippedRecords)
	}
}

func TestRunTransportFailure(t *testing.T) {
	wantErr := errors.New("registry unavailable")
	runner, key := newTestRunner(t, &staticFetcher{err: wantErr})

	_, err := runner.Run(context.Background(), Options{CacheKey: key})
	if !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want %v", err, wantErr)
	}
}

func TestRunWithoutStore(t *testing.T) {
	if _, err := NewRunner(nil, log.New(io.Discard)).Run(context.Background(), Options{}); err == nil {
		t.Error("Run() without a store should fail")
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.CacheKey != DefaultCacheKey {
		t.Errorf("CacheKey = %q, want %q", opts.CacheKey, DefaultCacheKey)
	}

	long := Options{CacheKey: strings.Repeat("a", 2000)}
	if err := long.ValidateAndSetDefaults(); !rerrors.Is(err, rerrors.ErrCodeInvalidInput) {
		t.Errorf("long cache key error = %v, want INVALID_INPUT", err)
	}
}
