package knowledge

import (
	"context"
	"testing"
)

func TestMemoryIndexSearch(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()

	err := index.Upsert(ctx, []Document{
		{ID: "a", Content: "fees answer", Vector: []float32{1, 0, 0}},
		{ID: "b", Content: "schedule answer", Vector: []float32{0, 1, 0}},
		{ID: "c", Content: "certificate answer", Vector: []float32{0.9, 0.1, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}

	hits, err := index.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("hit count = %d, want 2", len(hits))
	}
	if hits[0].Content != "fees answer" {
		t.Errorf("best hit = %q, want fees answer", hits[0].Content)
	}
	if hits[1].Content != "certificate answer" {
		t.Errorf("second hit = %q, want certificate answer", hits[1].Content)
	}
	if hits[0].Score < hits[1].Score {
		t.Error("hits must be ordered best first")
	}
}

func TestMemoryIndexUpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()

	if err := index.Upsert(ctx, []Document{
		{ID: "a", Content: "old answer", Vector: []float32{1, 0}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := index.Upsert(ctx, []Document{
		{ID: "a", Content: "new answer", Vector: []float32{1, 0}},
		{ID: "b", Content: "other answer", Vector: []float32{0, 1}},
	}); err != nil {
		t.Fatal(err)
	}

	count, err := index.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	hits, err := index.Search(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if hits[0].Content != "new answer" {
		t.Errorf("best hit = %q, want the replaced content", hits[0].Content)
	}
}

func TestMemoryIndexEmpty(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()

	hits, err := index.Search(ctx, []float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("empty index returned %d hits", len(hits))
	}

	count, err := index.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestMemoryIndexKLargerThanCorpus(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()
	if err := index.Upsert(ctx, []Document{
		{ID: "a", Content: "only doc", Vector: []float32{1, 0}},
	}); err != nil {
		t.Fatal(err)
	}

	hits, err := index.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("hit count = %d, want 1", len(hits))
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}
