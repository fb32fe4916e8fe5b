// Package query implements the FTS query processor contract described in
// spec.md §4.5: tokenize, split camelCase/snake_case, expand abbreviations,
// and build a disjunctive FTS5 MATCH expression with prefix-matched terms.
package query

import (
	codiierrors "github.com/oOSomnus/codii/internal/errors"
)

// Result is the (terms, fts_expression, expanded_terms) triple spec.md
// §4.7 step 1 hands to the lexical and vector subsearches.
type Result struct {
	// Terms are the tokens extracted directly from the user's query text
	// (after lowercasing and camelCase/snake_case splitting), before
	// abbreviation expansion.
	Terms []string
	// ExpandedTerms additionally includes abbreviation expansions, deduped
	// against Terms.
	ExpandedTerms []string
	// Expression is the final ` OR `-joined, prefix-suffixed FTS5 MATCH
	// expression built from ExpandedTerms.
	Expression string
}

// errTooShort is returned (wrapped) when the query reduces to a single
// token of length <= 2.
func errTooShort(query string) error {
	return codiierrors.ValidationError("query \""+query+"\" is too short", nil)
}
