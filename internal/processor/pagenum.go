package processor

import (
	"regexp"
	"strconv"
	"strings"
)

const pageNumberTailLines = 5

var pageNumberRe = regexp.MustCompile(`^[0-9]{1,4}$`)

// DetectPageNumber looks for the printed page number among the last few
// non-empty lines of a page. The line closest to the end wins. It reports
// false when no line in the tail is a bare 1-4 digit number.
func DetectPageNumber(lines []string) (int, bool) {
	var nonEmpty []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			nonEmpty = append(nonEmpty, trimmed)
		}
	}

	tail := nonEmpty[max(len(nonEmpty)-pageNumberTailLines, 0):]
	for i := len(tail) - 1; i >= 0; i-- {
		if !pageNumberRe.MatchString(tail[i]) {
			continue
		}
		n, err := strconv.Atoi(tail[i])
		if err != nil || n <= 0 {
			continue
		}
		return n, true
	}

	return 0, false
}

// isPageNumberLine reports whether a line is made of ASCII digits only
func isPageNumberLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
