// Package knowledge provides the FAQ knowledge base: dataset loading,
// passage chunking, language normalization, and semantic retrieval.
package knowledge

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// FAQEntry is one immutable question/answer pair from the dataset.
type FAQEntry struct {
	Question string
	Answer   string
}

// Passage renders the entry in the canonical "Q:/A:" form used for
// embedding and grounding.
func (e FAQEntry) Passage() string {
	return fmt.Sprintf("Q: %s\nA: %s", e.Question, e.Answer)
}

// LoadFAQCSV loads the FAQ dataset from a two-column CSV file.
// The header row is skipped and rows with fewer than two columns are
// ignored silently. A missing or unreadable file is a fatal startup
// condition for the caller.
func LoadFAQCSV(path string) ([]FAQEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open FAQ dataset %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // rows are validated below, not by the reader

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse FAQ dataset %s", path)
	}

	var entries []FAQEntry
	for i, row := range records {
		if i == 0 {
			continue // header
		}
		if len(row) < 2 {
			continue
		}
		entries = append(entries, FAQEntry{Question: row[0], Answer: row[1]})
	}
	return entries, nil
}
