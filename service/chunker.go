package service

import (
	"errors"

	"lexlens-backend/models"
)

// ErrInvalidChunkConfig indicates an unusable chunk size / overlap pairing
var ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

const (
	// DefaultChunkSize and DefaultChunkOverlap bound the text slices handed
	// to the model. Overlap keeps clause boundaries from being cut in half.
	DefaultChunkSize    = 4000
	DefaultChunkOverlap = 200
)

// SplitText splits text into overlapping chunks of at most chunkSize
// characters. Consecutive chunks share exactly overlap characters, so joining
// the chunks with the overlap removed reconstructs the input. The result is
// non-empty for any non-empty input.
func SplitText(text string, chunkSize, overlap int) ([]models.Chunk, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, ErrInvalidChunkConfig
	}
	if text == "" {
		return []models.Chunk{}, nil
	}

	runes := []rune(text)
	step := chunkSize - overlap

	chunks := make([]models.Chunk, 0, (len(runes)+step-1)/step)
	for start, index := 0, 0; start < len(runes); start, index = start+step, index+1 {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			Text:  string(runes[start:end]),
			Index: index,
		})
		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

// JoinChunks reconstructs the original text from chunks produced by SplitText
// with the same overlap
func JoinChunks(chunks []models.Chunk, overlap int) string {
	var runes []rune
	for i, chunk := range chunks {
		text := []rune(chunk.Text)
		if i > 0 && overlap > 0 {
			if overlap > len(text) {
				continue
			}
			text = text[overlap:]
		}
		runes = append(runes, text...)
	}
	return string(runes)
}
