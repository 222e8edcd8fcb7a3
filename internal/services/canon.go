package services

import "strings"

// Canon is the single canonicalization applied before every equality check in
// both the diff and validation stages. Spreadsheet cells arrive as text with
// stray whitespace, and an empty cell and a missing value mean the same
// thing, so comparisons run on the trimmed form and treat blank as null.
func Canon(s string) string {
	return strings.TrimSpace(s)
}

func canonEqual(a, b string) bool {
	return Canon(a) == Canon(b)
}
