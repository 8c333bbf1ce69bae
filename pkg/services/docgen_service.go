package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/apperrors"
	"github.com/planora-ai/planora-engine/pkg/generation"
	"github.com/planora-ai/planora-engine/pkg/models"
)

// GenerateDocumentPayload is the payload for `create document_generation`
// commands. Create proxies to the external generation service; the other
// actions are deliberate stubs until generated documents are persisted.
type GenerateDocumentPayload struct {
	DocumentType string     `json:"document_type" validate:"required,oneof=notes summary outline flashcards"`
	Topic        string     `json:"topic" validate:"required"`
	CourseID     *uuid.UUID `json:"course_id"`
	Instructions string     `json:"instructions"`
}

type docgenService struct {
	client generation.Client
	logger *zap.Logger
}

// NewDocumentGenerationService creates the entity handler that proxies
// document generation to the configured provider.
func NewDocumentGenerationService(client generation.Client, logger *zap.Logger) EntityHandler {
	return &docgenService{
		client: client,
		logger: logger.Named("docgen-handler"),
	}
}

var _ EntityHandler = (*docgenService)(nil)

func (s *docgenService) Create(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	var req GenerateDocumentPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode generation payload: %w", err)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid generation payload: %w", err)
	}

	result, err := s.client.GenerateDocument(ctx, &generation.Request{
		DocumentType: req.DocumentType,
		Topic:        req.Topic,
		Instructions: req.Instructions,
	})
	if err != nil {
		s.logger.Error("Document generation failed",
			zap.String("document_type", req.DocumentType),
			zap.Error(err))
		return nil, fmt.Errorf("generate document: %w", err)
	}

	doc := &models.GeneratedDocument{
		ID:           uuid.New(),
		DocumentType: req.DocumentType,
		Topic:        req.Topic,
		CourseID:     req.CourseID,
		Title:        result.Title,
		Content:      result.Content,
		Model:        result.Model,
		GeneratedAt:  time.Now().UTC(),
	}
	if prov, ok := models.GetProvenance(ctx); ok {
		doc.OwnerID = prov.OwnerID
	}

	return &HandlerResult{Data: doc, EntityID: &doc.ID, After: doc}, nil
}

func (s *docgenService) Read(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	return nil, fmt.Errorf("document generation read is %w", apperrors.ErrNotImplemented)
}

func (s *docgenService) Update(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	return nil, fmt.Errorf("document generation update is %w", apperrors.ErrNotImplemented)
}

func (s *docgenService) Delete(ctx context.Context, payload json.RawMessage) (*HandlerResult, error) {
	return nil, fmt.Errorf("document generation delete is %w", apperrors.ErrNotImplemented)
}
