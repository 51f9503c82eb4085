// Package questions turns free-form model output into a clean list of
// interview questions.
package questions

import (
	"regexp"
	"strings"
)

// MaxQuestions caps every parsed list.
const MaxQuestions = 10

// NoQuestions is returned as a single-element list when nothing usable could be
// recovered from the model output.
const NoQuestions = "No questions generated. Try again."

const minWords = 3

var (
	listMarker = regexp.MustCompile(`^\s*(?:(?:\d+[.)]|\*|-|\x{2022}|\(|\)|#+)\s*)+`)
	boldWrap   = regexp.MustCompile(`^\*\*|\*\*$`)
	roughSplit = regexp.MustCompile(`[\n,;]+`)
)

// Words that signal a line was cut off mid-sentence.
var danglingWords = map[string]struct{}{
	"of":   {},
	"in":   {},
	"for":  {},
	"with": {},
	"and":  {},
	"to":   {},
}

// Parse extracts at most MaxQuestions distinct questions from raw. It never
// returns an empty list.
func Parse(raw string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, MaxQuestions)

	for _, line := range strings.Split(raw, "\n") {
		q, ok := normalizeLine(line)
		if !ok {
			continue
		}
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
		if len(out) == MaxQuestions {
			break
		}
	}

	if len(out) > 0 {
		return out
	}
	return roughFallback(raw)
}

func normalizeLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}

	// bold can wrap the marker ("**1. ...**") or sit inside it ("- **...**")
	line = strings.TrimSpace(boldWrap.ReplaceAllString(line, ""))
	line = listMarker.ReplaceAllString(line, "")
	line = strings.TrimSpace(boldWrap.ReplaceAllString(line, ""))

	words := strings.Fields(line)
	if len(words) < minWords {
		return "", false
	}

	last := strings.ToLower(strings.TrimRight(words[len(words)-1], ".,;:"))
	if _, ok := danglingWords[last]; ok {
		return "", false
	}

	if !strings.HasSuffix(line, "?") {
		line = strings.TrimRight(line, ".") + "?"
	}
	return line, true
}

func roughFallback(raw string) []string {
	out := make([]string, 0, MaxQuestions)
	for _, part := range roughSplit.Split(raw, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == MaxQuestions {
			break
		}
	}
	if len(out) == 0 {
		return []string{NoQuestions}
	}
	return out
}
