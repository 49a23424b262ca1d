package financials

import (
	"strings"
	"unicode"
)

// The legacy extractors work on the statement section as a flat sequence
// of trimmed lines: a label line, then one value line per reporting
// column. selectLabels classifies that sequence once and hands back the
// label lines worth extracting, each remembering its position in the raw
// sequence so the per-period values can be read positionally.

// selectedLabel is a statement line that passed the selection filters.
type selectedLabel struct {
	index int    // position in the raw line sequence
	label string // the line text
	// parent is the tracked sub-section header in effect when the line was
	// scanned; "" when tracking was cleared by an intervening header.
	parent string
	// lastParent is the most recent tracked header regardless of clearing.
	lastParent string
}

// splitStatementLines cuts a section into trimmed non-empty lines,
// dropping stray currency-symbol-only lines left behind by de-markup.
func splitStatementLines(section string) []string {
	var lines []string
	for _, raw := range strings.Split(section, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || line == "$" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// selectLabels walks the raw lines and keeps the ones naming a relevant
// line item. The scan is restricted to the slice between the statement's
// first line-item anchor and any in-section "See Note" reference; within
// it, a line survives when it is shaped like a label (starts with an
// uppercase letter, is not an all-caps heading), is not a sub-section
// header, is not named boilerplate, and matches the statement's
// enumerated concept set.
//
// Colon-terminated headers on the statement's allow-list are tracked as
// the current parent for composite naming; any other colon-terminated
// header clears the tracking.
func selectLabels(lines []string, r StatementRules) []selectedLabel {
	start := 0
	if r.FirstItem != "" {
		for i, line := range lines {
			if strings.HasPrefix(line, r.FirstItem) {
				start = i
				break
			}
		}
	}

	var (
		selected      []selectedLabel
		currentParent string
		lastParent    string
	)
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, "See Note") {
			break
		}
		if strings.HasSuffix(line, ":") && !isLabelAnchor(line, r) {
			if r.AllowedHeader(line) {
				currentParent = strings.TrimSuffix(line, ":")
				lastParent = currentParent
			} else {
				currentParent = ""
			}
			continue
		}
		if !looksLikeLabel(line) || r.Excluded(line) || !r.Relevant(line) {
			continue
		}
		selected = append(selected, selectedLabel{
			index:      i,
			label:      line,
			parent:     currentParent,
			lastParent: lastParent,
		})
	}
	return selected
}

// isLabelAnchor reports whether a colon-terminated line is itself an
// enumerated line item (the income statement's per-share headers) rather
// than a sub-section header to filter out.
func isLabelAnchor(line string, r StatementRules) bool {
	return r.Relevant(line) && !r.AllowedHeader(line)
}

// looksLikeLabel reports whether a line reads like a line-item label:
// it starts with an uppercase letter, possibly parenthesized as in
// "(Decrease)/increase in cash", and is not an all-caps heading.
func looksLikeLabel(line string) bool {
	runes := []rune(line)
	first := runes[0]
	if first == '(' && len(runes) > 1 {
		first = runes[1]
	}
	if !unicode.IsUpper(first) {
		return false
	}
	return line != strings.ToUpper(line)
}

// valueWindow returns the n lines following position pos, the per-period
// value slots for the label at pos.
func valueWindow(lines []string, pos, n int) []string {
	from := pos + 1
	if from > len(lines) {
		return nil
	}
	to := from + n
	if to > len(lines) {
		to = len(lines)
	}
	return lines[from:to]
}
