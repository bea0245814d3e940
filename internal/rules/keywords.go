package rules

import (
	"strings"
	"unicode/utf8"
)

// ExtractKeywords splits a description into lowercase whitespace tokens and
// keeps those longer than three characters that are not stop words.
// Duplicates are dropped; order of first appearance is kept.
func ExtractKeywords(description string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range strings.Fields(strings.ToLower(description)) {
		if utf8.RuneCountInString(w) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

var stopWords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "in", "on", "at", "for", "with", "to", "of", "from", "by",
		"is", "are", "was", "were", "be", "been", "being", "have", "has", "had", "do", "does", "did",
		"not", "but", "if", "then", "else", "when", "where", "how", "what", "which", "who", "whom",
		"this", "that", "these", "those", "can", "could", "will", "would", "should", "may", "might",
		"must", "about", "above", "after", "again", "against", "all", "am", "any", "aren't", "as",
		"because", "before", "below", "between", "both", "can't", "cannot", "couldn't", "didn't",
		"doesn't", "doing", "don't", "down", "during", "each", "few", "further", "hadn't", "hasn't",
		"haven't", "having", "he", "he'd", "he'll", "he's", "her", "here", "here's", "hers", "herself",
		"him", "himself", "his", "how's", "i", "i'd", "i'll", "i'm", "i've", "into", "isn't", "it",
		"it's", "its", "itself", "let's", "me", "more", "most", "mustn't", "my", "myself", "no", "nor",
		"off", "once", "only", "other", "ought", "our", "ours", "ourselves", "out", "over", "own",
		"same", "shan't", "she", "she'd", "she'll", "she's", "shouldn't", "so", "some", "such", "than",
		"that's", "their", "theirs", "them", "themselves", "there", "there's", "they", "they'd",
		"they'll", "they're", "they've", "through", "too", "under", "until", "up", "very", "wasn't",
		"we", "we'd", "we'll", "we're", "we've", "weren't", "what's", "when's", "where's", "while",
		"who's", "why", "why's", "won't", "wouldn't", "you", "you'd", "you'll", "you're", "you've",
		"your", "yours", "yourself", "yourselves",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
