package processor

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_Empty(t *testing.T) {
	assert.Empty(t, SplitText("", 512, 100))
}

func TestSplitText_WindowCountAndOffsets(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		chunkSize int
		overlap   int
	}{
		{"exact multiple", 100, 20, 10},
		{"ragged tail", 103, 20, 5},
		{"no overlap", 50, 10, 0},
		{"text shorter than chunk", 7, 512, 100},
		{"defaults", 2000, 512, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("x", tt.length)
			step := tt.chunkSize - tt.overlap

			chunks := SplitText(text, tt.chunkSize, tt.overlap)

			want := (tt.length + step - 1) / step
			require.Len(t, chunks, want)
			for i, c := range chunks {
				assert.LessOrEqual(t, len(c), tt.chunkSize)
				assert.Equal(t, text[i*step:min(i*step+tt.chunkSize, tt.length)], c)
			}
		})
	}
}

func TestSplitText_OffsetsFollowStride(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxyz"

	chunks := SplitText(text, 6, 2)

	require.NotEmpty(t, chunks)
	prev := -1
	for _, c := range chunks {
		offset := strings.Index(text, c)
		if prev >= 0 {
			assert.Equal(t, 4, offset-prev)
		}
		prev = offset
	}
}

func TestSplitText_DropsWhitespaceWindows(t *testing.T) {
	text := "abcd" + strings.Repeat(" ", 8) + "efgh"

	chunks := SplitText(text, 4, 0)

	assert.Equal(t, []string{"abcd", "efgh"}, chunks)
}

func TestSplitText_OverlapNotSmallerThanChunk(t *testing.T) {
	chunks := SplitText("abcde", 3, 5)

	// stride collapses to one character
	assert.Equal(t, []string{"abc", "bcd", "cde", "de", "e"}, chunks)
}

func TestSplitText_NonPositiveChunkSize(t *testing.T) {
	assert.Empty(t, SplitText("abc", 0, 0))
	assert.Empty(t, SplitText("abc", -3, 0))
}

func TestSplitText_CountsCharactersNotBytes(t *testing.T) {
	text := strings.Repeat("ж", 10)

	chunks := SplitText(text, 4, 0)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 4)
	}
}
