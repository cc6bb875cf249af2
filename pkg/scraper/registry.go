package scraper

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps origins to the work that scrapes them.
type Registry struct {
	mu    sync.RWMutex
	works map[string]Work
}

func NewRegistry() *Registry {
	return &Registry{works: make(map[string]Work)}
}

func (r *Registry) Register(origin string, w Work) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.works[origin] = w
}

func (r *Registry) Get(origin string) (Work, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.works[origin]
	if !ok {
		return nil, fmt.Errorf("no scraper registered for origin: %s", origin)
	}
	return w, nil
}

// Origins returns the registered origins sorted.
func (r *Registry) Origins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	origins := make([]string, 0, len(r.works))
	for o := range r.works {
		origins = append(origins, o)
	}
	sort.Strings(origins)
	return origins
}
