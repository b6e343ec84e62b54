package knowledge

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/shijin/IDALSCustomerCareAgent/ai/core/embedding"
)

// DefaultTopK is the number of snippets returned per retrieval.
const DefaultTopK = 3

// Base is the FAQ knowledge base. It embeds the dataset once, lazily,
// and serves semantic top-k retrieval. Safe for concurrent use: the
// one-time build is guarded by a singleflight group, so concurrent
// first requests do not trigger duplicate builds.
type Base struct {
	entries    []FAQEntry
	index      Index
	embedder   embedding.Provider
	normalizer *Normalizer

	buildGroup singleflight.Group
	builtMu    sync.RWMutex
	built      bool
}

// NewBase creates a knowledge base over the given entries and index.
func NewBase(entries []FAQEntry, index Index, embedder embedding.Provider, normalizer *Normalizer) *Base {
	return &Base{
		entries:    entries,
		index:      index,
		embedder:   embedder,
		normalizer: normalizer,
	}
}

// Retrieve returns the top-k snippets for the query. An empty query or
// an empty index yields an empty result and no error. Non-English
// queries are normalized to an English proxy before search; the
// normalization never fails the retrieval.
func (b *Base) Retrieve(ctx context.Context, query string, k int) ([]Snippet, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if k <= 0 {
		k = DefaultTopK
	}

	if err := b.ensureBuilt(ctx); err != nil {
		return nil, err
	}

	// An empty index yields an empty result without touching the
	// embedding provider.
	count, err := b.index.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "index count failed")
	}
	if count == 0 {
		return nil, nil
	}

	// Shortcut phrases are romanized, so they are checked for every
	// query; the translation call only fires for non-English input.
	searchQuery := query
	if english, ok := ShortcutQuery(query); ok {
		searchQuery = english
	} else if DetectLanguage(query) != LanguageEnglish {
		searchQuery = b.normalizer.ToEnglish(ctx, query)
	}

	vector, err := b.embedder.Embed(ctx, searchQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to embed search query")
	}

	snippets, err := b.index.Search(ctx, vector, k)
	if err != nil {
		return nil, errors.Wrap(err, "index search failed")
	}

	slog.Debug("knowledge retrieval",
		"query", truncate(searchQuery, 50),
		"hits", len(snippets),
	)
	return snippets, nil
}

// ensureBuilt embeds and indexes the dataset exactly once. A failed
// build is retried on the next request rather than poisoning the base.
func (b *Base) ensureBuilt(ctx context.Context) error {
	b.builtMu.RLock()
	built := b.built
	b.builtMu.RUnlock()
	if built {
		return nil
	}

	_, err, _ := b.buildGroup.Do("build", func() (any, error) {
		b.builtMu.RLock()
		built := b.built
		b.builtMu.RUnlock()
		if built {
			return nil, nil
		}
		// A persistent index populated by an earlier run (or another
		// instance) is reused as-is instead of being re-embedded.
		count, err := b.index.Count(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "index count failed")
		}
		if count > 0 {
			slog.Info("knowledge index already populated", "chunks", count)
			b.builtMu.Lock()
			b.built = true
			b.builtMu.Unlock()
			return nil, nil
		}
		if err := b.build(ctx); err != nil {
			return nil, err
		}
		b.builtMu.Lock()
		b.built = true
		b.builtMu.Unlock()
		return nil, nil
	})
	return err
}

func (b *Base) build(ctx context.Context) error {
	var chunks []string
	for _, entry := range b.entries {
		chunks = append(chunks, SplitPassage(entry.Passage(), DefaultChunkSize)...)
	}
	if len(chunks) == 0 {
		slog.Warn("knowledge base built with empty dataset")
		return nil
	}

	vectors, err := b.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return errors.Wrap(err, "failed to embed FAQ chunks")
	}
	if len(vectors) != len(chunks) {
		return errors.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	docs := make([]Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = Document{
			ID:      chunkID(chunk),
			Content: chunk,
			Vector:  vectors[i],
		}
	}
	if err := b.index.Upsert(ctx, docs); err != nil {
		return errors.Wrap(err, "failed to index FAQ chunks")
	}

	slog.Info("knowledge base built",
		"entries", len(b.entries),
		"chunks", len(chunks),
	)
	return nil
}

// chunkID is stable per chunk content, so rebuilds upsert the same
// rows on a persistent index instead of inserting duplicates.
func chunkID(content string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(content)).String()
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
