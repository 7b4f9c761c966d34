package service

import (
	"context"
	"strings"
	"testing"

	"lexlens-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyMajorityVote(t *testing.T) {
	// Two chunks vote Contracts, one votes Property: Contracts wins
	client := &stubClient{respond: func(prompt string) string {
		if strings.Contains(prompt, "chunk-three") {
			return "Property & Real Estate"
		}
		return "Contracts & Agreements"
	}}

	chunks := []models.Chunk{
		{Text: "chunk-one", Index: 0},
		{Text: "chunk-two", Index: 1},
		{Text: "chunk-three", Index: 2},
	}

	category, err := NewClassifier(client).Classify(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryContracts, category)
	assert.Equal(t, 3, client.callCount())
}

func TestClassifyTieBreakIsDeterministic(t *testing.T) {
	// One vote each: candidates sorted ascending by (count, label), last wins.
	// "Property & Real Estate" > "Contracts & Agreements" lexically, so it must
	// win every run regardless of map iteration order.
	chunks := []models.Chunk{
		{Text: "chunk-one", Index: 0},
		{Text: "chunk-two", Index: 1},
	}

	for i := 0; i < 25; i++ {
		client := &stubClient{respond: func(prompt string) string {
			if strings.Contains(prompt, "chunk-one") {
				return "Contracts & Agreements"
			}
			return "Property & Real Estate"
		}}

		category, err := NewClassifier(client).Classify(context.Background(), chunks)
		require.NoError(t, err)
		require.Equal(t, models.CategoryProperty, category)
	}
}

func TestClassifyRejectionLabel(t *testing.T) {
	client := &stubClient{respond: func(string) string {
		return "NON-LEGAL DOCUMENT"
	}}

	category, err := NewClassifier(client).Classify(context.Background(), []models.Chunk{{Text: "once upon a time"}})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryNonLegal, category)
	assert.True(t, category.IsRejection())
}

func TestClassifyUnknownLabel(t *testing.T) {
	client := &stubClient{respond: func(string) string {
		return "Maritime Law"
	}}

	category, err := NewClassifier(client).Classify(context.Background(), []models.Chunk{{Text: "ahoy"}})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryUnknown, category)
}

func TestClassifyModelFailure(t *testing.T) {
	client := &stubClient{}

	_, err := NewClassifier(client).Classify(context.Background(), []models.Chunk{{Text: "anything"}})
	assert.ErrorIs(t, err, ErrClassificationFailed)
}

func TestClassifyNoChunks(t *testing.T) {
	_, err := NewClassifier(&stubClient{}).Classify(context.Background(), nil)
	assert.ErrorIs(t, err, ErrClassificationFailed)
}
