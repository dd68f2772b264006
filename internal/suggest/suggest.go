// Package suggest proposes known crop names for a crop the catalog does not recognize.
package suggest

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

const (
	nameField = "name"

	// DefaultMax is the number of suggestions returned when max is not positive.
	DefaultMax = 3

	// fuzziness is the Levenshtein distance allowed per term; bleve caps it at 2.
	fuzziness = 2
)

type cropDoc struct {
	Name string `json:"name"`
}

// Suggester is an in-memory fuzzy index over crop names.
type Suggester struct {
	index bleve.Index
	max   int
}

// New indexes names in memory. max bounds the number of suggestions per call.
func New(names []string, max int) (*Suggester, error) {
	if max <= 0 {
		max = DefaultMax
	}
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt(nameField, textFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create suggestion index: %w", err)
	}
	batch := index.NewBatch()
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if err := batch.Index(name, cropDoc{Name: name}); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to index crop %q: %w", name, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to index crops: %w", err)
	}
	return &Suggester{index: index, max: max}, nil
}

// Suggest returns up to max crop names that are a typo or a prefix away from term,
// best match first. It returns nil when nothing is close or the index fails.
func (s *Suggester) Suggest(term string) []string {
	terms := strings.Fields(strings.ToLower(term))
	if len(terms) == 0 {
		return nil
	}
	var queries []blevequery.Query
	for _, t := range terms {
		fq := bleve.NewFuzzyQuery(t)
		fq.SetFuzziness(fuzziness)
		fq.SetField(nameField)
		queries = append(queries, fq)

		pq := bleve.NewPrefixQuery(t)
		pq.SetField(nameField)
		queries = append(queries, pq)
	}
	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))
	req.Size = s.max
	res, err := s.index.Search(req)
	if err != nil {
		return nil
	}
	var out []string
	for _, hit := range res.Hits {
		out = append(out, hit.ID)
	}
	return out
}

// Close releases the index.
func (s *Suggester) Close() error {
	return s.index.Close()
}
