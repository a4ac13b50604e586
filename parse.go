package aimux

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ParseMode selects which matches ParseCompletion returns.
type ParseMode int

const (
	// MatchFirst returns only the first matching line's capture.
	MatchFirst ParseMode = iota
	// MatchLast returns only the last matching line's capture.
	MatchLast
	// MatchAll returns every matching line's capture, in line order.
	MatchAll
)

// NoMatchErr is returned by ParseCompletion when no line of the completion
// matches any pattern.
var NoMatchErr = errors.New("no pattern matched completion output")

// ParseCompletion extracts structured values from free-form model output.
// The text is scanned line by line; markdown bold markers are stripped and
// lines trimmed before matching. For each line, patterns are tried in order
// and the first one that matches contributes a value: the first capture
// group if the pattern has one, otherwise the whole match. An empty pattern
// matches the entire line.
//
// Returns the selected values per mode, or NoMatchErr when nothing matched.
func ParseCompletion(text string, patterns []string, mode ParseMode) ([]string, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, pattern := range patterns {
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		compiled[i] = re
	}

	var values []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		for _, re := range compiled {
			// A nil entry is an empty pattern, which matches the whole line.
			if re == nil {
				values = append(values, line)
				break
			}
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if len(m) > 1 {
				values = append(values, m[1])
			} else {
				values = append(values, m[0])
			}
			break
		}
	}

	if len(values) == 0 {
		return nil, NoMatchErr
	}
	switch mode {
	case MatchFirst:
		return values[:1], nil
	case MatchLast:
		return values[len(values)-1:], nil
	case MatchAll:
		return values, nil
	default:
		return nil, fmt.Errorf("unknown parse mode: %d", mode)
	}
}
