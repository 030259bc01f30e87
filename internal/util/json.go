package util

import (
	"regexp"
	"strings"
)

var (
	codeFenceRe  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	jsonArrayRe  = regexp.MustCompile(`(?s)\[.*\]`)
)

// StripCodeFences removes a surrounding markdown code fence from model
// output, returning the inner text. Input without a fence is returned
// trimmed but otherwise untouched.
func StripCodeFences(s string) string {
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// ExtractJSONObject returns the outermost {...} block in s, or empty
// string when none is present.
func ExtractJSONObject(s string) string {
	return jsonObjectRe.FindString(s)
}

// ExtractJSONArray returns the outermost [...] block in s, or empty
// string when none is present.
func ExtractJSONArray(s string) string {
	return jsonArrayRe.FindString(s)
}
