package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/re3facet/pkg/hierarchy"
	"github.com/matzehuels/re3facet/pkg/pipeline"
	"github.com/matzehuels/re3facet/pkg/registry"
	"github.com/matzehuels/re3facet/pkg/subject"
)

func testResult(t *testing.T) *pipeline.Result {
	t.Helper()
	table := registry.Table{Records: []registry.Record{
		{ID: "r3d1", Name: "Alpha", Subjects: []string{"1 Humanities", "10102 Classical Philology"}},
		{ID: "r3d2", Name: "Beta", Subjects: []string{"2 Life Sciences"}},
		{ID: "r3d3", Name: "Gamma", Subjects: []string{"10102 Classical Philology"}},
	}}
	freqs := subject.Frequencies(table, nil)
	root := hierarchy.FromFrequencies(freqs)
	return &pipeline.Result{
		RunID:     uuid.New(),
		Table:     table,
		Subjects:  freqs,
		Hierarchy: root,
		Tree:      hierarchy.ToTreeList(root),
	}
}

func newTestServer(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	return New(testResult(t), opts...).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Records)
	assert.Equal(t, 3, resp.Subjects)
}

func TestTree(t *testing.T) {
	h := newTestServer(t)

	rec := get(t, h, "/api/tree")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var tree []hierarchy.TreeNode
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tree))
	require.Len(t, tree, 2)
	assert.Equal(t, "1 Humanities", tree[0].Label)

	rec = get(t, h, "/api/tree?counts=true")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tree))
	assert.Equal(t, "1 Humanities (1)", tree[0].Label)
	assert.Equal(t, "1-01-02 Classical Philology (2)", tree[0].Children[0].Children[0].Label)
}

func TestOutline(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/outline")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Equal(t, "- 1 Humanities\n  - 1-01\n    - 1-01-02 Classical Philology\n- 2 Life Sciences\n", rec.Body.String())
}

func TestSubjects(t *testing.T) {
	h := newTestServer(t)
	tests := []struct {
		target string
		want   []string
	}{
		{"/api/subjects", []string{"1 Humanities", "10102 Classical Philology", "2 Life Sciences"}},
		{"/api/subjects?selected=1-01", []string{"10102 Classical Philology"}},
		{"/api/subjects?selected=2,1-01-02", []string{"10102 Classical Philology", "2 Life Sciences"}},
		{"/api/subjects?selected=9", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, h, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)

			var rows []subject.Frequency
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
			got := []string{}
			for _, r := range rows {
				got = append(got, r.Subject.Raw)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubjectsInvalidSelection(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/subjects?selected=bad%20value")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "INVALID_INPUT", resp.Error)
}

func TestRepositories(t *testing.T) {
	h := newTestServer(t)

	rec := get(t, h, "/api/repositories?selected=1-01")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []registry.Record
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&records))
	require.Len(t, records, 2)
	assert.Equal(t, "r3d1", records[0].ID)
	assert.Equal(t, "r3d3", records[1].ID)

	rec = get(t, h, "/api/repositories")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&records))
	assert.Len(t, records, 3)
}

func TestRepositoryByID(t *testing.T) {
	h := newTestServer(t)

	rec := get(t, h, "/api/repositories/r3d2")
	require.Equal(t, http.StatusOK, rec.Code)
	var record registry.Record
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&record))
	assert.Equal(t, "Beta", record.Name)

	rec = get(t, h, "/api/repositories/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, get(t, newTestServer(t), "/metrics").Code)

	reg := prometheus.NewRegistry()
	h := newTestServer(t, WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	assert.Equal(t, http.StatusOK, get(t, h, "/metrics").Code)
}
