// Package text provides text formatting utilities for CLI commands.
package text

import (
	"strings"
)

// Indentation is the standard indentation for CLI help text.
const Indentation = `  `

// LongDesc normalizes a command's long description: surrounding blank lines are dropped and the
// indentation shared by every line is removed, so descriptions can be written as indented raw
// strings.
func LongDesc(s string) string {
	if len(s) == 0 {
		return s
	}

	return normalizer{s}.trimNewlines().dedent().string
}

// Examples normalizes a command's examples: every line is trimmed and indented by Indentation.
func Examples(s string) string {
	if len(s) == 0 {
		return s
	}

	return normalizer{s}.trim().indent().string
}

type normalizer struct {
	string
}

func (s normalizer) trim() normalizer {
	s.string = strings.TrimSpace(s.string)

	return s
}

func (s normalizer) trimNewlines() normalizer {
	s.string = strings.Trim(s.string, "\n")

	return s
}

func (s normalizer) dedent() normalizer {
	lines := strings.Split(s.string, "\n")
	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lead := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first || !strings.HasPrefix(lead, prefix) {
			prefix = commonPrefix(prefix, lead, first)
		}
		first = false
	}
	for i, line := range lines {
		lines[i] = strings.TrimRight(strings.TrimPrefix(line, prefix), " \t")
	}
	s.string = strings.TrimSpace(strings.Join(lines, "\n"))

	return s
}

func (s normalizer) indent() normalizer {
	indentedLines := make([]string, 0, strings.Count(s.string, "\n")+1)
	for line := range strings.SplitSeq(s.string, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			indentedLines = append(indentedLines, "")
			continue
		}
		indentedLines = append(indentedLines, Indentation+trimmed)
	}
	s.string = strings.Join(indentedLines, "\n")

	return s
}

func commonPrefix(a, b string, first bool) string {
	if first {
		return b
	}
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}

	return a[:n]
}
