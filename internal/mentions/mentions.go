// Package mentions extracts @name tokens from free text and resolves them
// against known chat participants and agent types.
package mentions

import (
	"regexp"
	"strings"
)

// mentionPattern matches an @ followed by one or more identifier characters:
// letters from any script, combining marks, digits, emoji and other symbol
// code points, underscore, and hyphen.
var mentionPattern = regexp.MustCompile(`@([\p{L}\p{M}\p{N}\p{So}_-]+)`)

// Extract scans text left to right for @mentions and returns the tokens that
// exactly (case-sensitively) match a participant name, in first-seen order
// with duplicates dropped. Unknown mentions are ignored: the moderator may
// reference @-prefixed concepts that are not participants.
func Extract(text string, participants []string) []string {
	known := make(map[string]bool, len(participants))
	for _, name := range participants {
		known[name] = true
	}

	seen := make(map[string]bool)
	var ordered []string
	for _, match := range mentionPattern.FindAllStringSubmatch(text, -1) {
		name := match[1]
		if !known[name] || seen[name] {
			continue
		}
		seen[name] = true
		ordered = append(ordered, name)
	}
	return ordered
}

// Tokens returns every raw @mention token in text, in order, duplicates
// dropped. The router uses this superset for delegation matching, where a
// token may name an agent type rather than an existing participant.
func Tokens(text string) []string {
	seen := make(map[string]bool)
	var ordered []string
	for _, match := range mentionPattern.FindAllStringSubmatch(text, -1) {
		tok := match[1]
		if seen[tok] {
			continue
		}
		seen[tok] = true
		ordered = append(ordered, tok)
	}
	return ordered
}

// MatchesName reports whether a mention token addresses the given display
// name. The token matches the name exactly, or matches its
// hyphen-for-space normalized form (so @Claude-Code addresses "Claude Code").
// Matching is case-sensitive throughout.
func MatchesName(token, name string) bool {
	if token == name {
		return true
	}
	return token == Hyphenate(name)
}

// Hyphenate replaces spaces in a display name with hyphens, producing the
// form usable as a single @mention token.
func Hyphenate(name string) string {
	return strings.ReplaceAll(name, " ", "-")
}
