package fasta

import "regexp"

// nonAccessionChar matches runs of characters that may not appear inside an
// accession token: anything other than a letter, digit, underscore, or
// hyphen.
var nonAccessionChar = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

var (
	hasLetter = regexp.MustCompile(`[A-Za-z]`)
	hasDigit  = regexp.MustCompile(`[0-9]`)
)

// ExtractAccession implements spec §6's defline convention: the defline is
// split on runs of non-alphanumerics (excluding '_' and '-'); the first
// token is the accession if it contains both a letter and a digit, otherwise
// the second token is used (later tokens are not examined). A defline with a
// single token returns that token.
func ExtractAccession(defline string) string {
	tokens := nonAccessionChar.Split(defline, -1)
	var filtered []string
	for _, t := range tokens {
		if t != "" {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return ""
	}
	if hasLetter.MatchString(filtered[0]) && hasDigit.MatchString(filtered[0]) {
		return filtered[0]
	}
	if len(filtered) > 1 {
		return filtered[1]
	}
	return filtered[0]
}
