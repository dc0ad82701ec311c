// Package knowledge is a keyword index over the demo diagnostic payloads and
// optional markdown resources, queried by the query_diagnostics_knowledge
// tool. It answers with the best-matching documents rather than generated
// text; the model does the narration.
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Document is one indexed source.
type Document struct {
	Source string
	Text   string
	terms  map[string]int
}

// Index is a flag-gated keyword index.
type Index struct {
	enabled bool
	log     zerolog.Logger
	docs    []Document
}

// New builds the index from the given payloads plus any *.md files under
// resourcesDir. When enabled is false the index stays empty and every query
// answers with a disabled error.
func New(enabled bool, payloads map[string]map[string]any, resourcesDir string, log zerolog.Logger) *Index {
	idx := &Index{enabled: enabled, log: log}
	if !enabled {
		return idx
	}

	names := make([]string, 0, len(payloads))
	for name := range payloads {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		raw, err := json.MarshalIndent(payloads[name], "", "  ")
		if err != nil {
			log.Warn().Err(err).Str("payload", name).Msg("skipping unserializable payload")
			continue
		}
		idx.add(name, string(raw))
	}

	if resourcesDir != "" {
		idx.loadMarkdown(resourcesDir)
	}

	log.Info().Int("documents", len(idx.docs)).Msg("knowledge base built")
	return idx
}

func (i *Index) loadMarkdown(dir string) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return
	}
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			i.log.Warn().Err(err).Str("path", path).Msg("failed to read resource")
			continue
		}
		i.add(filepath.Base(path), string(data))
	}
}

func (i *Index) add(source, text string) {
	i.docs = append(i.docs, Document{
		Source: source,
		Text:   text,
		terms:  termCounts(text),
	})
}

// Enabled reports whether the knowledge base is active.
func (i *Index) Enabled() bool { return i.enabled }

// Query scores every document against the question's terms and returns the
// top matches as a structured payload.
func (i *Index) Query(question string) map[string]any {
	if !i.enabled {
		return map[string]any{"error": "Knowledge base feature is disabled."}
	}
	if len(i.docs) == 0 {
		return map[string]any{"error": "Knowledge base has no documents loaded."}
	}

	qTerms := termCounts(question)
	if len(qTerms) == 0 {
		return map[string]any{"error": "Question contains no searchable terms."}
	}

	type scored struct {
		doc   Document
		score int
	}
	var hits []scored
	for _, doc := range i.docs {
		s := 0
		for term := range qTerms {
			s += doc.terms[term]
		}
		if s > 0 {
			hits = append(hits, scored{doc, s})
		}
	}
	if len(hits) == 0 {
		return map[string]any{
			"answer":  fmt.Sprintf("No knowledge base documents match %q.", question),
			"sources": []string{},
		}
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	if len(hits) > 3 {
		hits = hits[:3]
	}

	var sources []string
	var sections []string
	for _, h := range hits {
		sources = append(sources, h.doc.Source)
		sections = append(sections, fmt.Sprintf("## %s\n%s", h.doc.Source, excerpt(h.doc.Text, 1200)))
	}

	return map[string]any{
		"answer":  strings.Join(sections, "\n\n"),
		"sources": sources,
	}
}

func excerpt(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "\n... (truncated)"
}

// termCounts lowercases and tokenizes text into word frequencies, dropping
// short stop-ish tokens.
func termCounts(text string) map[string]int {
	counts := map[string]int{}
	token := strings.Builder{}
	flush := func() {
		if token.Len() >= 3 {
			counts[token.String()]++
		}
		token.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			token.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return counts
}
