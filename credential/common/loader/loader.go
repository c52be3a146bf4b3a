// Package loader provides the JSON-LD document loader used during RDF
// canonicalization. It serves contexts from a static in-memory table and
// never reaches the network unless a fallback loader is supplied explicitly.
package loader

import (
	"encoding/json"
	"fmt"

	"github.com/piprate/json-gold/ld"
)

// StaticLoader resolves context URLs from a fixed table. It is safe for
// concurrent use; every load returns a freshly parsed document.
type StaticLoader struct {
	documents map[string][]byte
	fallback  ld.DocumentLoader
}

// Option configures a StaticLoader.
type Option func(*StaticLoader)

// WithContext registers an additional context document under url.
func WithContext(url string, document []byte) Option {
	return func(l *StaticLoader) {
		l.documents[url] = document
	}
}

// WithFallback consults next for URLs missing from the table.
func WithFallback(next ld.DocumentLoader) Option {
	return func(l *StaticLoader) {
		l.fallback = next
	}
}

// NewStaticLoader returns a loader preloaded with the W3C credentials v1
// and v2 contexts plus the data integrity v2, examples v2 and multikey v1
// contexts.
func NewStaticLoader(opts ...Option) *StaticLoader {
	l := &StaticLoader{documents: builtinContexts()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadDocument implements ld.DocumentLoader.
func (l *StaticLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	raw, ok := l.documents[u]
	if !ok {
		if l.fallback != nil {
			doc, err := l.fallback.LoadDocument(u)
			if err != nil {
				return nil, &LoaderError{URL: u, Err: err}
			}
			return doc, nil
		}
		return nil, &LoaderError{URL: u}
	}

	var document interface{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, &LoaderError{URL: u, Err: fmt.Errorf("failed to parse context document: %w", err)}
	}

	return &ld.RemoteDocument{DocumentURL: u, Document: document}, nil
}

// URLs lists the context URLs held in the table.
func (l *StaticLoader) URLs() []string {
	urls := make([]string, 0, len(l.documents))
	for u := range l.documents {
		urls = append(urls, u)
	}
	return urls
}

// LoaderError reports a context URL the loader could not resolve.
type LoaderError struct {
	URL string
	Err error
}

func (e *LoaderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to load context %q: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to load context %q: not in static context table", e.URL)
}

func (e *LoaderError) Unwrap() error {
	return e.Err
}
