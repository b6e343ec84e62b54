package postgres

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/shijin/IDALSCustomerCareAgent/ai/knowledge"
)

// FAQIndex is a pgvector-backed knowledge.Index. Lets multiple agent
// instances share one pre-embedded FAQ index instead of each building
// an in-memory copy.
type FAQIndex struct {
	db *sql.DB
}

// NewFAQIndex creates the pgvector FAQ index over an open connection.
func NewFAQIndex(db *sql.DB) *FAQIndex {
	return &FAQIndex{db: db}
}

var _ knowledge.Index = (*FAQIndex)(nil)

func (x *FAQIndex) Upsert(ctx context.Context, docs []knowledge.Document) error {
	stmt := `
		INSERT INTO faq_embedding (id, content, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding
	`
	for _, doc := range docs {
		if _, err := x.db.ExecContext(ctx, stmt, doc.ID, doc.Content, pgvector.NewVector(doc.Vector)); err != nil {
			return errors.Wrap(err, "failed to upsert faq embedding")
		}
	}
	return nil
}

// Search returns the top-k chunks by cosine similarity.
func (x *FAQIndex) Search(ctx context.Context, vector []float32, k int) ([]knowledge.Snippet, error) {
	if k <= 0 {
		return nil, nil
	}
	query := `
		SELECT content, 1 - (embedding <=> $1) AS score
		FROM faq_embedding
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := x.db.QueryContext(ctx, query, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, errors.Wrap(err, "faq vector search failed")
	}
	defer rows.Close()

	var snippets []knowledge.Snippet
	for rows.Next() {
		var s knowledge.Snippet
		if err := rows.Scan(&s.Content, &s.Score); err != nil {
			return nil, errors.Wrap(err, "failed to scan faq search result")
		}
		snippets = append(snippets, s)
	}
	return snippets, rows.Err()
}

func (x *FAQIndex) Count(ctx context.Context) (int, error) {
	var count int
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM faq_embedding`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count faq embeddings")
	}
	return count, nil
}
