package matcher

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"github.com/kailas-cloud/shakesearch/internal/corpus"
	"github.com/kailas-cloud/shakesearch/internal/domain"
)

const (
	bleveField     = "text"
	bleveBatchSize = 1000
	// defaultBleveSize matches bleve's own default page size.
	defaultBleveSize = 10
)

// BleveMatcher runs fuzzy term queries against an in-memory full-text index of lines.
type BleveMatcher struct {
	index bleve.Index
	size  int
}

// NewBleve indexes every non-blank corpus line. size caps the hits per query.
func NewBleve(c *corpus.Corpus, size int) (*BleveMatcher, error) {
	if size <= 0 {
		size = defaultBleveSize
	}

	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	batch := index.NewBatch()
	for i, line := range c.Lines() {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := batch.Index(strconv.Itoa(i), map[string]any{bleveField: line}); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("index line %d: %w", i, err)
		}
		if batch.Size() >= bleveBatchSize {
			if err := index.Batch(batch); err != nil {
				_ = index.Close()
				return nil, fmt.Errorf("flush batch: %w", err)
			}
			batch.Reset()
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("flush batch: %w", err)
	}

	return &BleveMatcher{index: index, size: size}, nil
}

// Search returns the best scoring lines, most relevant first.
func (m *BleveMatcher) Search(ctx context.Context, query string) ([]string, error) {
	// Fuzzy terms are not analyzed; the index holds lowercased tokens.
	q := bleve.NewFuzzyQuery(strings.ToLower(query))
	q.SetField(bleveField)

	req := bleve.NewSearchRequestOptions(q, m.size, 0, false)
	req.Fields = []string{bleveField}

	res, err := m.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: bleve: %w", domain.ErrMatcherFailed, err)
	}

	lines := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if line, ok := hit.Fields[bleveField].(string); ok {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// Close releases the index.
func (m *BleveMatcher) Close() error {
	if err := m.index.Close(); err != nil {
		return fmt.Errorf("close bleve index: %w", err)
	}
	return nil
}
