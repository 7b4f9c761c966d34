package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextRoundTrip(t *testing.T) {
	text := strings.Repeat("The Tenant shall maintain the premises in habitable condition. ", 200)

	chunks, err := SplitText(text, 500, 50)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.LessOrEqual(t, len([]rune(chunk.Text)), 500)
	}

	assert.Equal(t, text, JoinChunks(chunks, 50))
}

func TestSplitTextRoundTripMultibyte(t *testing.T) {
	// Rune-based splitting must not cut multibyte characters in half
	text := strings.Repeat("第一条 賃借人は本物件を善良な管理者の注意をもって使用する。", 100)

	chunks, err := SplitText(text, 300, 30)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	assert.Equal(t, text, JoinChunks(chunks, 30))
}

func TestSplitTextConsecutiveOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 100)

	chunks, err := SplitText(text, 400, 100)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		curr := []rune(chunks[i].Text)
		assert.Equal(t, string(prev[len(prev)-100:]), string(curr[:100]),
			"chunks %d and %d must share exactly the overlap", i-1, i)
	}
}

func TestSplitTextShortInput(t *testing.T) {
	chunks, err := SplitText("short document", 4000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short document", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestSplitTextEmptyInput(t *testing.T) {
	chunks, err := SplitText("", 4000, 200)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitTextInvalidConfig(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 200},
		{"negative overlap", 100, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SplitText("some text", tc.size, tc.overlap)
			assert.ErrorIs(t, err, ErrInvalidChunkConfig)
		})
	}
}
