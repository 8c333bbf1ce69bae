package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/apperrors"
	"github.com/planora-ai/planora-engine/pkg/generation"
	"github.com/planora-ai/planora-engine/pkg/models"
)

func TestDocgenCreateProxiesProvider(t *testing.T) {
	var gotReq *generation.Request
	client := &generation.MockClient{
		GenerateDocumentFunc: func(ctx context.Context, req *generation.Request) (*generation.Result, error) {
			gotReq = req
			return &generation.Result{
				Title:   "Summary: Fourier transforms",
				Content: "## Fourier transforms\n...",
				Model:   "gpt-4o-mini",
			}, nil
		},
	}
	svc := NewDocumentGenerationService(client, zap.NewNop())

	payload := json.RawMessage(`{"document_type":"summary","topic":"Fourier transforms"}`)
	result, err := svc.Create(context.Background(), payload)
	require.NoError(t, err)

	doc := result.Data.(*models.GeneratedDocument)
	assert.Equal(t, "Summary: Fourier transforms", doc.Title)
	assert.Equal(t, "gpt-4o-mini", doc.Model)
	assert.Equal(t, "summary", doc.DocumentType)
	assert.Equal(t, 1, client.GenerateDocumentCalls)
	require.NotNil(t, gotReq)
	assert.Equal(t, "Fourier transforms", gotReq.Topic)
}

func TestDocgenCreateRejectsUnknownDocumentType(t *testing.T) {
	client := &generation.MockClient{}
	svc := NewDocumentGenerationService(client, zap.NewNop())

	_, err := svc.Create(context.Background(), json.RawMessage(`{"document_type":"essay","topic":"x"}`))
	assert.Error(t, err)
	assert.Zero(t, client.GenerateDocumentCalls)
}

func TestDocgenCreateWrapsProviderError(t *testing.T) {
	client := &generation.MockClient{
		GenerateDocumentFunc: func(ctx context.Context, req *generation.Request) (*generation.Result, error) {
			return nil, errors.New("provider unavailable")
		},
	}
	svc := NewDocumentGenerationService(client, zap.NewNop())

	_, err := svc.Create(context.Background(), json.RawMessage(`{"document_type":"notes","topic":"x"}`))
	assert.ErrorContains(t, err, "generate document")
}

func TestDocgenOtherActionsNotImplemented(t *testing.T) {
	svc := NewDocumentGenerationService(&generation.MockClient{}, zap.NewNop())

	for name, fn := range map[string]func(context.Context, json.RawMessage) (*HandlerResult, error){
		"read":   svc.Read,
		"update": svc.Update,
		"delete": svc.Delete,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := fn(context.Background(), nil)
			assert.ErrorIs(t, err, apperrors.ErrNotImplemented)
		})
	}
}
