package query

import "strings"

// Process tokenizes q, expands abbreviations, and builds a disjunctive
// FTS5 MATCH expression, per spec.md §4.5's "FTS query construction"
// contract. A single-token query of length <= 2 is rejected.
func Process(q string) (Result, error) {
	terms := tokenize(q)
	if len(terms) == 1 && len(terms[0]) <= 2 {
		return Result{}, errTooShort(q)
	}
	if len(terms) == 0 {
		return Result{}, errTooShort(q)
	}

	seen := make(map[string]bool)
	var expanded []string
	for _, t := range terms {
		for _, e := range expandAbbreviations(t) {
			if seen[e] {
				continue
			}
			seen[e] = true
			expanded = append(expanded, e)
		}
	}

	parts := make([]string, len(expanded))
	for i, t := range expanded {
		parts[i] = escapeFTSTerm(t) + "*"
	}

	return Result{
		Terms:         terms,
		ExpandedTerms: expanded,
		Expression:    strings.Join(parts, " OR "),
	}, nil
}

// escapeFTSTerm returns term unchanged; it does no quoting or escaping.
// Terms reaching it come from tokenize and the abbreviation table, which
// are alphanumeric/underscore only.
func escapeFTSTerm(term string) string {
	return term
}
