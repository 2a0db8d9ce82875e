// Package index offers free-form lookup over the catalog using an in-memory
// Bleve index. It complements the engine's exact filters; it does not replace them.
package index

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"boardshelf/internal/catalog"
)

type Index struct {
	index   bleve.Index
	records map[string]catalog.GameRecord
}

// Build indexes records in memory. Records are keyed by title, so a later
// duplicate title replaces an earlier one.
func Build(records []catalog.GameRecord) (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	b := &Index{index: idx, records: make(map[string]catalog.GameRecord, len(records))}

	batch := idx.NewBatch()
	for _, r := range records {
		if r.Title == "" {
			continue
		}
		b.records[r.Title] = r
		if err := batch.Index(r.Title, document(r)); err != nil {
			idx.Close()
			return nil, err
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, err
	}
	return b, nil
}

func document(r catalog.GameRecord) map[string]interface{} {
	return map[string]interface{}{
		"title":       r.Title,
		"genre":       []string(r.Genre),
		"language":    r.Language,
		"location":    r.Location,
		"difficulty":  r.Difficulty,
		"description": r.Description,
	}
}

func (b *Index) Close() error {
	if b.index != nil {
		return b.index.Close()
	}
	return nil
}

func (b *Index) Count() (int, error) {
	c, err := b.index.DocCount()
	return int(c), err
}

// Search runs a shelf query and returns matching records, best match first.
//
// Shelf syntax: comma-separated terms, where
//
//	!genre, @language, #location, $title
//
// restrict a term to one field and a bare term matches title or description.
// Like-type terms are ORed, unlike-type terms ANDed. Input without any of these
// markers is handed to Bleve's query string syntax (title:catan~1, +genre:party).
func (b *Index) Search(input string) ([]catalog.GameRecord, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return b.runQuery(bleve.NewMatchAllQuery())
	}
	if strings.ContainsAny(input, "!@#$") || strings.Contains(input, ",") {
		return b.runQuery(shelfQuery(input))
	}
	return b.runQuery(bleve.NewQueryStringQuery(input))
}

func shelfQuery(input string) bleveQuery.Query {
	var genreParams, languageParams, locationParams, titleParams, multiParams []string
	for _, word := range strings.Split(input, ",") {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		switch word[0] {
		case '!':
			genreParams = append(genreParams, word[1:])
		case '@':
			languageParams = append(languageParams, word[1:])
		case '#':
			locationParams = append(locationParams, word[1:])
		case '$':
			titleParams = append(titleParams, word[1:])
		default:
			multiParams = append(multiParams, word)
		}
	}

	mainBoolQuery := bleve.NewBooleanQuery()

	addOrGroup := func(terms []string, fields ...string) {
		if len(terms) == 0 {
			return
		}
		subQuery := bleve.NewBooleanQuery()
		for _, t := range terms {
			for _, field := range fields {
				mq := bleve.NewMatchQuery(t)
				mq.SetField(field)
				subQuery.AddShould(mq)
			}
		}
		mainBoolQuery.AddMust(subQuery)
	}

	addOrGroup(genreParams, "genre")
	addOrGroup(languageParams, "language")
	addOrGroup(locationParams, "location")
	addOrGroup(titleParams, "title")
	addOrGroup(multiParams, "title", "description")

	return mainBoolQuery
}

func (b *Index) runQuery(q bleveQuery.Query) ([]catalog.GameRecord, error) {
	req := bleve.NewSearchRequest(q)
	req.Size = len(b.records)
	if req.Size == 0 {
		return nil, nil
	}
	req.SortBy([]string{"-_score", "_id"})

	res, err := b.index.Search(req)
	if err != nil {
		return nil, err
	}

	results := make([]catalog.GameRecord, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if r, ok := b.records[hit.ID]; ok {
			results = append(results, r)
		}
	}
	return results, nil
}
