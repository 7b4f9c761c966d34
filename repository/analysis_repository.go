package repository

import (
	"context"
	"fmt"
	"strings"

	"lexlens-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnalysisRepository handles database operations for analysis results
type AnalysisRepository struct {
	db *pgxpool.Pool
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *pgxpool.Pool) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create persists an analysis result with its document embedding.
// A nil embedding stores NULL; the vector column is optional so analysis
// persistence does not depend on the embedding service being up.
func (r *AnalysisRepository) Create(
	ctx context.Context,
	record *models.AnalysisRecord,
	embedding []float64,
) error {
	query := `
		INSERT INTO analyses (
			document_id, summary, json_data, document_type, category, dates, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7::vector)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		record.DocumentID,
		record.Summary,
		record.JSONData,
		record.DocumentType,
		record.Category,
		record.Dates,
		formatVector(embedding),
	).Scan(&record.ID, &record.CreatedAt)

	return err
}

// GetByID retrieves an analysis by ID
func (r *AnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error) {
	record := &models.AnalysisRecord{}
	query := `
		SELECT id, document_id, summary, json_data, document_type, category, dates, created_at
		FROM analyses
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.DocumentID,
		&record.Summary,
		&record.JSONData,
		&record.DocumentType,
		&record.Category,
		&record.Dates,
		&record.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	if record.JSONData == nil {
		record.JSONData = make(models.JSONMap)
	}
	if record.Dates == nil {
		record.Dates = make(models.DateEvents, 0)
	}

	return record, nil
}

// GetByDocumentID retrieves the latest analysis for a document
func (r *AnalysisRepository) GetByDocumentID(ctx context.Context, documentID uuid.UUID) (*models.AnalysisRecord, error) {
	record := &models.AnalysisRecord{}
	query := `
		SELECT id, document_id, summary, json_data, document_type, category, dates, created_at
		FROM analyses
		WHERE document_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.QueryRow(ctx, query, documentID).Scan(
		&record.ID,
		&record.DocumentID,
		&record.Summary,
		&record.JSONData,
		&record.DocumentType,
		&record.Category,
		&record.Dates,
		&record.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	if record.JSONData == nil {
		record.JSONData = make(models.JSONMap)
	}
	if record.Dates == nil {
		record.Dates = make(models.DateEvents, 0)
	}

	return record, nil
}

// formatVector renders an embedding as a pgvector literal, or nil for NULL
func formatVector(embedding []float64) interface{} {
	if len(embedding) == 0 {
		return nil
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
