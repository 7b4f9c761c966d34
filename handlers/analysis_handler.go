package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"lexlens-backend/models"
	"lexlens-backend/repository"
	"lexlens-backend/service"
	"lexlens-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnalysisHandler handles HTTP requests for document analysis
type AnalysisHandler struct {
	documentRepo     *repository.DocumentRepository
	analysisRepo     *repository.AnalysisRepository
	storage          storage.Storage
	analysisService  *service.AnalysisService
	maxFileSize      int64
	allowedMimeTypes map[string]bool
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(
	documentRepo *repository.DocumentRepository,
	analysisRepo *repository.AnalysisRepository,
	storage storage.Storage,
	analysisService *service.AnalysisService,
) *AnalysisHandler {
	return &AnalysisHandler{
		documentRepo:    documentRepo,
		analysisRepo:    analysisRepo,
		storage:         storage,
		analysisService: analysisService,
		maxFileSize:     20 * 1024 * 1024, // 20MB, scanned documents are large
		allowedMimeTypes: map[string]bool{
			"application/pdf": true,
			"image/png":       true,
			"image/jpeg":      true,
			"image/tiff":      true,
			"text/plain":      true,
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true, // .docx
		},
	}
}

// AnalyzeDocument handles POST /api/documents/analyze.
// It stores the upload, then streams newline-delimited JSON progress events
// until the run terminates with a complete or error event.
func (h *AnalysisHandler) AnalyzeDocument(c *gin.Context) {
	userIDStr := c.PostForm("user_id")
	if userIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_USER_ID",
				"message": "user_id is required",
			},
		})
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
			},
		})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mimeTypeFromFilename(fileHeader.Filename)
	}
	if !h.allowedMimeTypes[mimeType] && !strings.HasPrefix(mimeType, "text/") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "File type not allowed. Allowed types: PDF, PNG, JPEG, TIFF, TXT, DOCX",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_READ_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	doc := &models.Document{
		ID:       uuid.New(),
		UserID:   userID,
		Filename: fileHeader.Filename,
		MimeType: mimeType,
		Size:     fileHeader.Size,
	}

	// Everything past this point is part of the stream; errors become
	// error events instead of JSON envelopes.
	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)

	encoder := json.NewEncoder(c.Writer)
	emit := func(event service.ProgressEvent) {
		if c.Request.Context().Err() != nil {
			// Client went away; keep running but stop writing
			return
		}
		if err := encoder.Encode(event); err != nil {
			return
		}
		c.Writer.Flush()
	}

	emit(service.ProgressEvent{Status: service.StatusUploading, Message: "Storing " + doc.Filename})
	if !h.storeDocument(c, doc, data, emit) {
		return
	}

	h.analysisService.AnalyzeUpload(c.Request.Context(), doc, data, emit)
}

// storeDocument uploads the document bytes and records them. Storage or
// database failure terminates the stream with an error event.
func (h *AnalysisHandler) storeDocument(c *gin.Context, doc *models.Document, data []byte, emit service.EmitFunc) bool {
	storagePath, err := h.storage.Upload(c.Request.Context(), doc.ID, doc.Filename, bytes.NewReader(data))
	if err != nil {
		emit(service.ProgressEvent{Status: service.StatusError, Message: "failed to store document: " + err.Error()})
		return false
	}
	doc.StoragePath = storagePath

	if err := h.documentRepo.Create(c.Request.Context(), doc); err != nil {
		h.storage.Delete(c.Request.Context(), storagePath)
		emit(service.ProgressEvent{Status: service.StatusError, Message: "failed to save document record: " + err.Error()})
		return false
	}
	return true
}

// GetAnalysis handles GET /api/analyses/:id
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid analysis ID format",
			},
		})
		return
	}

	record, err := h.analysisRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Analysis not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}

// GetDocumentAnalysis handles GET /api/documents/:id/analysis
func (h *AnalysisHandler) GetDocumentAnalysis(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid document ID format",
			},
		})
		return
	}

	record, err := h.analysisRepo.GetByDocumentID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "No analysis found for document",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}

// ChatRequest is the request body for the analysis chat endpoint
type ChatRequest struct {
	Question string `json:"question" binding:"required"`
}

// Chat handles POST /api/analyses/:id/chat
func (h *AnalysisHandler) Chat(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid analysis ID format",
			},
		})
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "question is required",
			},
		})
		return
	}

	answer, err := h.analysisService.Chat(c.Request.Context(), id, req.Question)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CHAT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"answer": answer,
		},
	})
}

// mimeTypeFromFilename infers a MIME type from the file extension
func mimeTypeFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".txt":
		return "text/plain"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
