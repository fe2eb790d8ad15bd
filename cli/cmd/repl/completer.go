package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/nixattr/nix"
)

// ctrlCommands are the available command-mode commands.
var ctrlCommands = []string{
	"help", "get", "set", "list", "edit", "write", "clear", "quit",
}

// pathCommands take an attribute path as their first argument.
var pathCommands = map[string]bool{"get": true, "set": true, "edit": true}

// isWordBoundary returns true if the rune delimits a path component for
// completion purposes. Hyphens and quotes are part of Nix identifiers.
func isWordBoundary(r rune) bool {
	return r == '.' || unicode.IsSpace(r)
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. Returns an empty word when the cursor sits on a
// boundary (after a space, between dots, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the dotted path leading up to the word starting at
// wordStart. For input "get users.users.al" with the word "al", the parent
// path is "users.users". Returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	if i := strings.LastIndexFunc(prefix, unicode.IsSpace); i >= 0 {
		prefix = prefix[i+1:]
	}

	return strings.Trim(prefix, ".")
}

// fieldIndex returns the index of the whitespace-separated field that starts
// at or before offset, and the first field of input.
func fieldIndex(input string, offset int) (int, string) {
	fields := strings.Fields(input[:offset])

	first := ""
	if all := strings.Fields(input); len(all) > 0 {
		first = all[0]
	}

	n := len(fields)
	if offset > 0 && !unicode.IsSpace(rune(input[offset-1])) {
		n--
	}

	return max(n, 0), first
}

// childCandidates returns the distinct attribute names one level below
// parent, in source order.
func childCandidates(doc *nix.Document, parent string) []string {
	var prefix nix.Path
	if parent != "" {
		prefix = strings.Split(parent, ".")
	}

	seen := make(map[string]bool)

	var names []string

	for e := range doc.Entries() {
		if e.Binding.Dynamic || len(e.Path) <= len(prefix) ||
			!e.Path.HasPrefix(prefix) {
			continue
		}

		name := e.Path[len(prefix)]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	return names
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first) and the word boundaries. An
// empty word only completes after a dot, where every child is offered.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)

	var candidates []string

	parent := parentPath(input, wordStart)

	switch field, first := fieldIndex(input, wordStart); {
	case m.mode == modeGet && field == 0,
		m.mode == modeCtrl && field == 1 && pathCommands[first]:
		candidates = childCandidates(m.doc, parent)

	case m.mode == modeCtrl && field == 0:
		candidates = ctrlCommands
	}

	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	if word == "" {
		if parent == "" {
			return nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing) uses
// the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := suggestionStyle.Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = selectedStyle.Bold(true)
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}

// preview shortens a value to a single line of at most limit runes.
func preview(value string, limit int) string {
	if i := strings.IndexByte(value, '\n'); i >= 0 {
		value = value[:i] + " ..."
	}

	if utf8.RuneCountInString(value) > limit {
		runes := []rune(value)
		value = string(runes[:limit-3]) + "..."
	}

	return value
}
