// Package portspec parses port specifications for netsweep scans.
// It expands comma and dash notation ("80", "20-25", "80,443,8000-8100")
// into concrete port lists, separating malformed tokens so callers can
// report them once and continue with the valid subset.
package portspec

import (
	"strconv"
	"strings"
)

const (
	// Valid TCP/UDP port boundaries.
	minPort = 1
	maxPort = 65535

	rangeParts = 2
)

// Parse expands a sequence of raw port tokens into valid port numbers and
// a batch of invalid tokens. Each token is either a bare integer or a
// "start-end" range. Ranges where start > end contribute zero ports and
// are not treated as invalid. Valid ports keep insertion order from
// expansion and duplicates are preserved, so the probe count matches the
// request exactly.
func Parse(tokens []string) (valid []int, invalid []string) {
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if strings.Contains(token, "-") {
			ports, ok := expandRange(token)
			if !ok {
				invalid = append(invalid, token)
				continue
			}
			valid = append(valid, ports...)
			continue
		}

		port, err := strconv.Atoi(token)
		if err != nil || port < minPort || port > maxPort {
			invalid = append(invalid, token)
			continue
		}
		valid = append(valid, port)
	}
	return valid, invalid
}

// ParseSpec splits a comma-joined specification string into tokens and
// parses them. This is the convenience form used by the CLI layer.
func ParseSpec(spec string) (valid []int, invalid []string) {
	return Parse(Tokenize(spec))
}

// Tokenize splits a comma-joined specification into raw tokens without
// validating them, so callers can report malformed tokens as a batch.
func Tokenize(spec string) []string {
	var tokens []string
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// expandRange expands a "start-end" token. A reversed range (start > end)
// is reported as ok with zero ports; endpoints outside [1,65535] or
// non-numeric endpoints make the whole token invalid.
func expandRange(token string) ([]int, bool) {
	parts := strings.SplitN(token, "-", rangeParts)
	if len(parts) != rangeParts {
		return nil, false
	}

	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, false
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, false
	}
	if start < minPort || start > maxPort || end < minPort || end > maxPort {
		return nil, false
	}
	if start > end {
		return nil, true
	}

	ports := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		ports = append(ports, p)
	}
	return ports, true
}
