// Package index builds the inverted index for one record type: a mapping
// from normalised term to the postings (document id, occurrence count) for
// every document whose searchable fields contain the term. An Index is
// immutable once Build returns; rebuilding produces a wholly new Index, so
// concurrent readers never observe a partially built structure.
package index

import (
	"sort"
	"strings"

	"github.com/auroralabs/aurora-search/internal/search/store"
	"github.com/auroralabs/aurora-search/internal/search/tokenizer"
)

// Posting records one document's occurrences of a term.
type Posting struct {
	DocID string
	Count int
}

// Index is the term → postings mapping for a single record type. Posting
// lists are sorted by DocID ascending, which makes index content a pure
// function of the input set regardless of record order.
type Index struct {
	postings map[string][]Posting
	docCount int
}

// Build tokenizes every record's searchable fields (concatenated in schema
// order) and accumulates per-document term counts. It never fails: input
// validation happens at Table construction, and indexing itself is a pure
// computation over the corpus.
func Build[T store.Record](tbl *store.Table[T], tok *tokenizer.Tokenizer) *Index {
	ix := &Index{
		postings: make(map[string][]Posting),
		docCount: tbl.Len(),
	}

	tbl.Enumerate(func(rec T) {
		terms := tok.Tokenize(strings.Join(rec.SearchText(), " "))
		counts := make(map[string]int, len(terms))
		for _, term := range terms {
			counts[term]++
		}
		id := rec.DocID()
		for term, count := range counts {
			ix.postings[term] = append(ix.postings[term], Posting{DocID: id, Count: count})
		}
	})

	for term := range ix.postings {
		list := ix.postings[term]
		sort.Slice(list, func(i, j int) bool {
			return list[i].DocID < list[j].DocID
		})
	}
	return ix
}

// Postings returns the posting list for a term, or nil when the term does
// not occur in the corpus. The returned slice must not be modified.
func (ix *Index) Postings(term string) []Posting {
	return ix.postings[term]
}

// DocCount returns the number of documents the index was built over.
func (ix *Index) DocCount() int {
	return ix.docCount
}

// TermCount returns the number of distinct terms in the index.
func (ix *Index) TermCount() int {
	return len(ix.postings)
}
