package ical

import "strings"

// Unfold splits raw iCal text into logical content lines. RFC 5545 allows a
// property to be folded across physical lines by starting continuation lines
// with a single space or horizontal tab; unfolding strips that one leading
// whitespace byte and joins the content with no separator. Empty physical
// lines separate properties but carry no content, so they never become
// logical lines.
func Unfold(text string) []string {
	if text == "" {
		return nil
	}

	var lines []string
	var buf strings.Builder
	buffered := false

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSuffix(raw, "\r")

		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			if buffered {
				buf.WriteString(line[1:])
			}
			// A continuation with nothing buffered has no line to extend.
			continue
		}

		if buffered {
			lines = append(lines, buf.String())
			buf.Reset()
			buffered = false
		}
		if line == "" {
			continue
		}
		buf.WriteString(line)
		buffered = true
	}

	if buffered {
		lines = append(lines, buf.String())
	}

	return lines
}
