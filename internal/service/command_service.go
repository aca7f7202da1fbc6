package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"commandlayer/internal/dto"
	"commandlayer/internal/intent"
	"commandlayer/internal/models"
	"commandlayer/internal/rag"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommandLogStore appends audit records.
type CommandLogStore interface {
	Insert(ctx context.Context, log *models.CommandLog) error
}

// Resolver turns raw text into a typed intent plus retrieval context.
type Resolver interface {
	Resolve(ctx context.Context, rawText string, fallback map[string]any) (intent.ResolvedIntent, rag.Context, error)
}

// CommandService sequences validation, resolution, execution and audit
// logging for one command.
type CommandService struct {
	validator *CommandValidator
	resolver  Resolver
	executor  *CommandExecutor
	logs      CommandLogStore
	logger    *zap.Logger
}

func NewCommandService(
	validator *CommandValidator,
	resolver Resolver,
	executor *CommandExecutor,
	logs CommandLogStore,
	logger *zap.Logger,
) *CommandService {
	return &CommandService{
		validator: validator,
		resolver:  resolver,
		executor:  executor,
		logs:      logs,
		logger:    logger,
	}
}

// Caller identifies the authenticated origin of a command. Zero value means
// an unauthenticated caller (auth mode off).
type Caller struct {
	APIKeyID string
	Name     string
	Role     string
}

// resolutionMeta is the serialized audit trail of how the decision was made.
type resolutionMeta struct {
	Action     string         `json:"action"`
	Payload    map[string]any `json:"payload"`
	Confidence float64        `json:"confidence"`
	Provider   string         `json:"provider"`
	Model      string         `json:"model,omitempty"`
	RAG        *rag.Context   `json:"rag,omitempty"`
	Auth       map[string]any `json:"auth,omitempty"`
}

// Execute runs one command through the pipeline. Requests that fail before
// execution leave no audit record; every request that reaches execution
// produces exactly one.
func (s *CommandService) Execute(ctx context.Context, cmd *dto.CommandRequest, caller Caller) (*dto.CommandResponse, error) {
	if err := s.validator.ValidateRequest(cmd); err != nil {
		return nil, err
	}

	action := strings.TrimSpace(cmd.Action)
	payload := cmd.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	meta := resolutionMeta{
		Confidence: 1.0,
		Provider:   string(intent.ProviderDirect),
	}
	ragCtx := rag.Disabled()
	usedRawText := false

	if action == "" {
		resolved, resolvedRag, err := s.resolver.Resolve(ctx, cmd.RawText, payload)
		if err != nil {
			return nil, translateProviderError(err)
		}
		if resolved.Failed() {
			svcErr := NewError(CodeMissingFields,
				fmt.Sprintf("could not resolve an action from raw_text: %s", resolved.Err))
			// Hand back whatever retrieval context was gathered so the
			// caller can retry with more detail.
			if resolvedRag.Enabled {
				svcErr.Details = map[string]any{
					"rag_mode":    resolvedRag.Mode,
					"rag_sources": resolvedRag.Sources,
				}
			}
			return nil, svcErr
		}

		action = resolved.Action
		payload = resolved.Payload
		ragCtx = resolvedRag
		usedRawText = true
		meta.Confidence = resolved.Confidence
		meta.Provider = string(resolved.Provider)
		meta.Model = resolved.Model
	}

	action, normalized, err := s.validator.ValidateActionAndPayload(action, payload)
	if err != nil {
		return nil, err
	}
	meta.Action = action
	meta.Payload = normalized
	if ragCtx.Enabled {
		meta.RAG = &ragCtx
	}
	if caller.APIKeyID != "" {
		auth := map[string]any{"api_key_id": caller.APIKeyID}
		if caller.Name != "" {
			auth["api_key_name"] = caller.Name
		}
		if caller.Role != "" {
			auth["role"] = caller.Role
		}
		meta.Auth = auth
	}

	rawText := action
	if usedRawText {
		rawText = cmd.RawText
	}

	result, err := s.executor.Execute(ctx, action, normalized)
	if err != nil {
		s.writeLog(ctx, rawText, meta, models.CommandStatusFailed, caller.APIKeyID)
		return nil, fmt.Errorf("command execution failed: %w", err)
	}

	status := models.CommandStatusSuccess
	if result.AlreadyExists {
		status = models.CommandStatusNoop
	}

	if err := s.writeLog(ctx, rawText, meta, status, caller.APIKeyID); err != nil {
		return nil, fmt.Errorf("failed to write command log: %w", err)
	}

	s.logger.Info("Command executed",
		zap.String("action", action),
		zap.String("status", string(status)),
		zap.String("provider", meta.Provider),
		zap.Float64("confidence", meta.Confidence),
	)

	return &dto.CommandResponse{
		Status: string(status),
		Action: action,
		Result: result,
	}, nil
}

func (s *CommandService) writeLog(ctx context.Context, rawText string, meta resolutionMeta, status models.CommandStatus, apiKeyID string) error {
	intentJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to serialize resolution metadata: %w", err)
	}

	row := &models.CommandLog{
		ID:         uuid.New(),
		RawText:    rawText,
		IntentJSON: string(intentJSON),
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}
	if apiKeyID != "" {
		if id, parseErr := uuid.Parse(apiKeyID); parseErr == nil {
			row.APIKeyID = &id
		}
	}

	if err := s.logs.Insert(ctx, row); err != nil {
		if status == models.CommandStatusFailed {
			// Best effort: the request is already failing.
			s.logger.Error("Failed to write failure audit record", zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}
