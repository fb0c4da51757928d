package document

import "strings"

// MaskPrefix is prepended to every line of a comment body while it is not
// being edited, so bodies and surrounding chrome can be styled apart. It is
// never part of a body.
const MaskPrefix = "\u200b"

func maskLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if strings.HasPrefix(l, MaskPrefix) {
			out[i] = l
			continue
		}
		out[i] = MaskPrefix + l
	}
	return out
}

func unmaskLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimPrefix(l, MaskPrefix)
	}
	return out
}

// splitBody splits a body into surface lines. An empty body still occupies
// one line so it stays addressable.
func splitBody(body string) []string {
	return strings.Split(normalizeNewlines(body), "\n")
}

func joinBody(lines []string) string {
	return strings.Join(unmaskLines(lines), "\n")
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
