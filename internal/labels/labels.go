// Package labels converts raw classifier tags into the display phrases shown
// in the journal. Pure functions, total on any string input.
package labels

import "strings"

// UnknownLabel is the sentinel the classifier returns when it cannot
// produce a result. It carries no information and is dropped before merging.
const UnknownLabel = "unknown"

// genericPhrase is the fallback for empty or unrecognizable tags.
const genericPhrase = "a photo"

// synonyms maps classifier vocabulary to a canonical noun. Classifier output
// tends to be over-specific ("golden retriever", "sports car"), so clusters
// collapse to the word a person would use in an album heading.
var synonyms = map[string]string{
	"man":              "person",
	"woman":            "person",
	"person":           "person",
	"people":           "person",
	"boy":              "person",
	"girl":             "person",
	"human":            "person",
	"face":             "person",
	"golden retriever": "dog",
	"labrador":         "dog",
	"puppy":            "dog",
	"dog":              "dog",
	"kitten":           "cat",
	"tabby":            "cat",
	"cat":              "cat",
	"sports car":       "car",
	"convertible":      "car",
	"automobile":       "car",
	"car":              "car",
	"daisy":            "flower",
	"rose":             "flower",
	"tulip":            "flower",
	"flower":           "flower",
	"dish":             "food",
	"meal":             "food",
	"plate":            "food",
	"food":             "food",
	"skyscraper":       "building",
	"church":           "building",
	"house":            "building",
	"building":         "building",
	"oak":              "tree",
	"pine":             "tree",
	"tree":             "tree",
	"seashore":         "beach",
	"coast":            "beach",
	"beach":            "beach",
	"alp":              "mountain",
	"volcano":          "mountain",
	"mountain":         "mountain",
}

// Canonical maps a raw tag to its canonical noun, or returns the cleaned tag
// unchanged when it belongs to no known cluster.
func Canonical(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if tag == "" {
		return ""
	}
	// Multi-label tags come comma-separated ("tabby, tabby cat"); the first
	// segment is the primary name.
	if i := strings.Index(tag, ","); i >= 0 {
		tag = strings.TrimSpace(tag[:i])
	}
	if canonical, ok := synonyms[tag]; ok {
		return canonical
	}
	return tag
}

// Phrase turns a canonical noun into a display phrase with an english
// indefinite article. The vowel check is orthographic, not phonetic.
func Phrase(noun string) string {
	if noun == "" {
		return genericPhrase
	}
	if strings.ContainsRune("aeiou", rune(noun[0])) {
		return "an " + noun
	}
	return "a " + noun
}

// Normalize maps raw classifier tags to deduplicated display phrases,
// preserving first-seen order. Total on any input: a blank tag becomes the
// generic phrase, and an empty tag list yields no phrases.
func Normalize(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, tag := range raw {
		phrase := Phrase(Canonical(tag))
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		out = append(out, phrase)
	}
	return out
}

// DropUnknown filters out the classifier's failure sentinel. A result that
// was only the sentinel becomes empty, which callers treat as "no
// additional labels".
func DropUnknown(tags []string) []string {
	var out []string
	for _, tag := range tags {
		if strings.EqualFold(strings.TrimSpace(tag), UnknownLabel) {
			continue
		}
		out = append(out, tag)
	}
	return out
}
