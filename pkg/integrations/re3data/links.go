package re3data

import (
	"strings"
	"sync"

	"github.com/matzehuels/re3facet/pkg/integrations"
	"github.com/matzehuels/re3facet/pkg/registry"
)

const progressEvery = 250

// ParseLinks returns every non-empty href target in the index document, in document
// order, resolved against base.
func ParseLinks(base string, index registry.RawDocument) ([]string, error) {
	doc, err := registry.Parse(index)
	if err != nil {
		return nil, err
	}
	hrefs := doc.AttrValues("href")
	links := make([]string, 0, len(hrefs))
	for _, h := range hrefs {
		if strings.TrimSpace(h) == "" {
			continue
		}
		links = append(links, integrations.ResolveURL(base, h))
	}
	return links, nil
}

type progressCounter struct {
	mu sync.Mutex
	n  int
}

func (p *progressCounter) inc() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n++
	return p.n
}
