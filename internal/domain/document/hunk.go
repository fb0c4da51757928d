package document

import (
	"regexp"
	"strconv"
	"strings"
)

// diffContextLines is the number of lines shown above a thread's anchor range.
const diffContextLines = 3

// hunkFallbackLines is the number of trailing hunk lines shown when a hunk
// header cannot be parsed or no line falls inside the anchor range.
const hunkFallbackLines = 4

var hunkHeaderPattern = regexp.MustCompile(`^@@ -([0-9]+)(?:,[0-9]+)? \+([0-9]+)(?:,[0-9]+)? @@`)

// excerptHunk returns the hunk header plus the hunk lines anchored at
// [start, end]. Deleted lines are numbered on the old side, everything else
// on the new side.
func excerptHunk(hunk string, start, end int) []string {
	hunk = strings.TrimRight(normalizeNewlines(hunk), "\n")
	if hunk == "" {
		return nil
	}
	lines := strings.Split(hunk, "\n")

	m := hunkHeaderPattern.FindStringSubmatch(lines[0])
	if m == nil {
		return tail(lines, hunkFallbackLines)
	}
	oldLine, _ := strconv.Atoi(m[1])
	newLine, _ := strconv.Atoi(m[2])

	from := start - diffContextLines
	out := []string{lines[0]}
	for _, l := range lines[1:] {
		var n int
		switch {
		case strings.HasPrefix(l, `\`):
			continue
		case strings.HasPrefix(l, "-"):
			n = oldLine
			oldLine++
		case strings.HasPrefix(l, "+"):
			n = newLine
			newLine++
		default:
			n = newLine
			oldLine++
			newLine++
		}
		if n >= from && n <= end {
			out = append(out, l)
		}
	}

	if len(out) == 1 {
		return tail(lines, hunkFallbackLines)
	}
	return out
}

func tail(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
