package processor

import "strings"

// SplitText cuts text into windows of chunkSize characters. Consecutive windows
// start chunkSize-overlap characters apart (at least one), so neighbouring
// windows share overlap characters. Windows holding only whitespace are dropped.
func SplitText(text string, chunkSize, overlap int) []string {
	if text == "" || chunkSize <= 0 {
		return nil
	}

	step := max(chunkSize-overlap, 1)

	// Offsets are in runes so Cyrillic text is never cut mid-character
	runes := []rune(text)

	var chunks []string
	for offset := 0; offset < len(runes); offset += step {
		end := min(offset+chunkSize, len(runes))
		chunk := string(runes[offset:end])
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		chunks = append(chunks, chunk)
	}

	return chunks
}
