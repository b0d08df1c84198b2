package store

import (
	"context"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/hanbit/seoulmate/internal/catalog"
	serrors "github.com/hanbit/seoulmate/internal/errors"
)

// lexicalDoc is the indexed shape of a catalog item. Everything searchable
// is folded into one field so match queries hit titles, cast, and
// descriptions alike.
type lexicalDoc struct {
	Content string `json:"content"`
}

// LexicalIndex is an in-memory bleve index over the catalog.
type LexicalIndex struct {
	index bleve.Index
}

// NewLexicalIndex builds and populates the index from the catalog.
func NewLexicalIndex(c *catalog.Catalog) (*LexicalIndex, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, serrors.LexicalError("create index", err)
	}

	batch := index.NewBatch()
	for i := 0; i < c.Len(); i++ {
		doc := lexicalDoc{Content: itemContent(c.At(i))}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			return nil, serrors.LexicalError("index item", err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, serrors.LexicalError("commit batch", err)
	}

	return &LexicalIndex{index: index}, nil
}

func buildMapping() mapping.IndexMapping {
	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = standard.Name
	contentField.Store = false
	contentField.IncludeTermVectors = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("content", contentField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name
	return indexMapping
}

// itemContent concatenates the searchable text of an item.
func itemContent(it *catalog.Item) string {
	parts := []string{
		it.Title, it.Genre, it.Description, it.Cast,
		it.Director, it.Keywords, it.Screenwriters,
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// Search runs a match query and returns up to limit hits, best first.
// Scores are raw tf-idf values; callers normalize per result set.
func (idx *LexicalIndex) Search(ctx context.Context, queryText string, limit int) ([]Hit, error) {
	if strings.TrimSpace(queryText) == "" || limit <= 0 {
		return nil, nil
	}

	matchQuery := bleve.NewMatchQuery(queryText)
	matchQuery.SetField("content")

	request := bleve.NewSearchRequest(matchQuery)
	request.Size = limit

	result, err := idx.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, serrors.LexicalError("search", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, match := range result.Hits {
		id, err := strconv.Atoi(match.ID)
		if err != nil {
			continue
		}
		hits = append(hits, Hit{ID: id, Score: match.Score})
	}
	return hits, nil
}

// DocCount returns the number of indexed items.
func (idx *LexicalIndex) DocCount() (uint64, error) {
	return idx.index.DocCount()
}

// Close releases index resources.
func (idx *LexicalIndex) Close() error {
	return idx.index.Close()
}

var _ LexicalSearcher = (*LexicalIndex)(nil)
