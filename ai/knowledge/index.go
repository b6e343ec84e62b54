package knowledge

import (
	"context"
	"math"
	"sort"
	"sync"
)

// Document is one embedded FAQ chunk stored in the index.
type Document struct {
	ID      string
	Content string
	Vector  []float32
}

// Snippet is one retrieval hit, tagged as authoritative source content.
type Snippet struct {
	Content string
	Score   float32
}

// Index is the nearest-neighbor search service over embedded FAQ
// chunks. Implementations: in-memory cosine index (default) and the
// pgvector-backed index in store/db/postgres.
type Index interface {
	// Upsert stores embedded documents.
	Upsert(ctx context.Context, docs []Document) error

	// Search returns the top-k documents by similarity to the vector,
	// ordered best first. An empty index yields an empty result.
	Search(ctx context.Context, vector []float32, k int) ([]Snippet, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}

// MemoryIndex is a process-local cosine-similarity index. Read-mostly:
// writes happen once at build time, reads for the process lifetime.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs []Document
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Upsert replaces documents by ID, matching the pgvector index's
// conflict behavior, so re-indexing the same content never duplicates.
func (m *MemoryIndex) Upsert(_ context.Context, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		replaced := false
		for i := range m.docs {
			if m.docs[i].ID == doc.ID {
				m.docs[i] = doc
				replaced = true
				break
			}
		}
		if !replaced {
			m.docs = append(m.docs, doc)
		}
	}
	return nil
}

func (m *MemoryIndex) Search(_ context.Context, vector []float32, k int) ([]Snippet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.docs) == 0 || k <= 0 {
		return nil, nil
	}

	scored := make([]Snippet, 0, len(m.docs))
	for _, doc := range m.docs {
		scored = append(scored, Snippet{
			Content: doc.Content,
			Score:   cosineSimilarity(vector, doc.Vector),
		})
	}

	// Stable sort keeps insertion order for equal scores, so repeated
	// searches over a fixed index return identical snippet sets.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (m *MemoryIndex) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
