package xmain

import "strings"

const (
	// minUsageWidth is the narrowest column usage text is wrapped into before
	// it is moved onto its own line.
	minUsageWidth = 24
	// fallbackIndent indents usage that starts on its own line.
	fallbackIndent = 16
)

// wrapUsage fits s into a column that starts at indent and ends at width.
// Continuation lines are indented to the column. A width of 0 disables
// wrapping and only indents the lines s already has.
func wrapUsage(indent, width int, s string) string {
	if width <= 0 {
		return strings.ReplaceAll(s, "\n", "\n"+strings.Repeat(" ", indent))
	}
	var prefix string
	if width-indent < minUsageWidth {
		indent = fallbackIndent
		prefix = "\n" + strings.Repeat(" ", indent)
	}
	avail := width - indent
	if avail < minUsageWidth {
		return prefix + strings.ReplaceAll(s, "\n", "\n"+strings.Repeat(" ", indent))
	}

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		lines = append(lines, splitLine(para, avail)...)
	}
	return prefix + strings.Join(lines, "\n"+strings.Repeat(" ", indent))
}

// splitLine breaks s on whitespace into lines of at most n bytes. A word
// longer than n gets a line to itself.
func splitLine(s string, n int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if len(cur)+1+len(w) > n {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	return append(lines, cur)
}
