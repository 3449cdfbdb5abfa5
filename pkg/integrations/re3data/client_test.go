package re3data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/re3facet/pkg/integrations"
	"github.com/matzehuels/re3facet/pkg/registry"
)

// newRegistry serves an index of n repositories plus their detail documents.
func newRegistry(t *testing.T, n int, failID string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/beta/repositories", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, "<list>")
		for i := 1; i <= n; i++ {
			fmt.Fprintf(w, `<repository><id>r3d%d</id><name>Repo %d</name><link href="/api/beta/repository/r3d%d" rel="self"/></repository>`, i, i, i)
		}
		fmt.Fprint(w, "</list>")
	})
	mux.HandleFunc("/api/beta/repository/{id}", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		id := r.PathValue("id")
		if id == failID {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, "<r3d:re3data xmlns:r3d=%q><r3d:re3data.orgIdentifier>%s</r3d:re3data.orgIdentifier></r3d:re3data>", registry.Namespace, id)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &requests
}

func testClient(server *httptest.Server, concurrency int) *Client {
	return NewClient(Config{
		IndexURL:    server.URL + "/api/beta/repositories",
		Concurrency: concurrency,
		HTTPClient:  server.Client(),
		Logger:      log.New(io.Discard),
	})
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{})
	if c.IndexURL() != DefaultIndexURL {
		t.Errorf("IndexURL() = %q, want %q", c.IndexURL(), DefaultIndexURL)
	}
	if c.concurrency != 1 {
		t.Errorf("concurrency = %d, want 1", c.concurrency)
	}
}

func TestFetchIndex(t *testing.T) {
	server, _ := newRegistry(t, 3, "")
	links, err := testClient(server, 1).FetchIndex(context.Background())
	if err != nil {
		t.Fatalf("FetchIndex() error: %v", err)
	}
	want := []string{
		server.URL + "/api/beta/repository/r3d1",
		server.URL + "/api/beta/repository/r3d2",
		server.URL + "/api/beta/repository/r3d3",
	}
	if diff := cmp.Diff(want, links); diff != "" {
		t.Errorf("FetchIndex() mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchIndexTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(Config{IndexURL: server.URL, HTTPClient: server.Client()}).FetchIndex(context.Background())
	var te *integrations.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("FetchIndex() error = %v, want *TransportError", err)
	}
}

func TestFetchDocumentVerbatim(t *testing.T) {
	const body = "<r3d:re3data>\n  <r3d:repositoryName>A &amp; B</r3d:repositoryName>\n</r3d:re3data>\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	}))
	defer server.Close()

	doc, err := NewClient(Config{HTTPClient: server.Client()}).FetchDocument(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchDocument() error: %v", err)
	}
	if string(doc) != body {
		t.Errorf("FetchDocument() = %q, want %q", doc, body)
	}
}

func TestHarvest(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			server, requests := newRegistry(t, 10, "")
			docs, err := testClient(server, concurrency).Harvest(context.Background())
			if err != nil {
				t.Fatalf("Harvest() error: %v", err)
			}
			if len(docs) != 10 {
				t.Fatalf("len(docs) = %d, want 10", len(docs))
			}
			for i, doc := range docs {
				want := fmt.Sprintf(">r3d%d<", i+1)
				if !strings.Contains(string(doc), want) {
					t.Errorf("docs[%d] = %q, want index order", i, doc)
				}
			}
			if n := requests.Load(); n != 11 {
				t.Errorf("requests = %d, want 11 (index + 10 details)", n)
			}
		})
	}
}

func TestHarvestAbortsOnDetailFailure(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			server, _ := newRegistry(t, 5, "r3d3")
			docs, err := testClient(server, concurrency).Harvest(context.Background())
			var te *integrations.TransportError
			if !errors.As(err, &te) {
				t.Fatalf("Harvest() error = %v, want *TransportError", err)
			}
			if te.StatusCode != http.StatusServiceUnavailable {
				t.Errorf("StatusCode = %d, want 503", te.StatusCode)
			}
			if docs != nil {
				t.Error("Harvest() must not return partial results")
			}
		})
	}
}

func TestHarvestCancelled(t *testing.T) {
	server, requests := newRegistry(t, 5, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := testClient(server, 1).Harvest(ctx); err == nil {
		t.Fatal("Harvest() should fail on a cancelled context")
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestParseLinks(t *testing.T) {
	index := registry.RawDocument(`<list>
  <repository><link href="https://www.re3data.org/api/beta/repository/r3d1"/></repository>
  <repository><link href="/api/beta/repository/r3d2"/></repository>
  <repository><link href=""/></repository>
</list>`)
	links, err := ParseLinks(DefaultIndexURL, index)
	if err != nil {
		t.Fatalf("ParseLinks() error: %v", err)
	}
	want := []string{
		"https://www.re3data.org/api/beta/repository/r3d1",
		"https://www.re3data.org/api/beta/repository/r3d2",
	}
	if diff := cmp.Diff(want, links); diff != "" {
		t.Errorf("ParseLinks() mismatch (-want +got):\n%s", diff)
	}
}
