package handlers

import (
	"context"
	"encoding/json"

	"commandlayer/internal/dto"
	"commandlayer/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CommandLogLister pages through audit records, newest first.
type CommandLogLister interface {
	List(ctx context.Context, limit, offset int) ([]models.CommandLog, error)
}

// AssetLister returns the asset catalog.
type AssetLister interface {
	List(ctx context.Context) ([]models.Asset, error)
}

// TaskLister returns the task catalog.
type TaskLister interface {
	List(ctx context.Context) ([]models.Task, error)
}

// ObservabilityHandler serves the read-only audit and catalog views.
type ObservabilityHandler struct {
	logs   CommandLogLister
	assets AssetLister
	tasks  TaskLister
	logger *zap.Logger
}

func NewObservabilityHandler(
	logs CommandLogLister,
	assets AssetLister,
	tasks TaskLister,
	logger *zap.Logger,
) *ObservabilityHandler {
	return &ObservabilityHandler{
		logs:   logs,
		assets: assets,
		tasks:  tasks,
		logger: logger,
	}
}

func (h *ObservabilityHandler) ListCommandLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	logs, err := h.logs.List(c.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list command logs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			ErrorCode: "internal_error",
			Message:   "Failed to list command logs.",
		})
	}

	items := make([]dto.CommandLogItem, 0, len(logs))
	for _, log := range logs {
		var intentJSON map[string]any
		if err := json.Unmarshal([]byte(log.IntentJSON), &intentJSON); err != nil {
			intentJSON = map[string]any{}
		}

		item := dto.CommandLogItem{
			ID:        log.ID.String(),
			RawText:   log.RawText,
			Status:    string(log.Status),
			CreatedAt: log.CreatedAt,
			Intent:    intentJSON,
		}
		if log.APIKeyID != nil {
			id := log.APIKeyID.String()
			item.APIKeyID = &id
		}
		// Caller identity is recorded in the intent metadata at execution
		// time; surface it as first-class fields.
		if auth, ok := intentJSON["auth"].(map[string]any); ok {
			if name, ok := auth["api_key_name"].(string); ok && name != "" {
				item.APIKeyName = &name
			}
			if role, ok := auth["role"].(string); ok && role != "" {
				item.Role = &role
			}
		}
		items = append(items, item)
	}

	return c.JSON(items)
}

func (h *ObservabilityHandler) ListAssets(c *fiber.Ctx) error {
	assets, err := h.assets.List(c.Context())
	if err != nil {
		h.logger.Error("Failed to list assets", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			ErrorCode: "internal_error",
			Message:   "Failed to list assets.",
		})
	}

	items := make([]dto.AssetSummary, 0, len(assets))
	for _, asset := range assets {
		items = append(items, dto.AssetSummary{ID: asset.ID.String(), Name: asset.Name})
	}
	return c.JSON(items)
}

func (h *ObservabilityHandler) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.List(c.Context())
	if err != nil {
		h.logger.Error("Failed to list tasks", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			ErrorCode: "internal_error",
			Message:   "Failed to list tasks.",
		})
	}

	items := make([]dto.TaskSummary, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, dto.TaskSummary{ID: task.ID.String(), Title: task.Title})
	}
	return c.JSON(items)
}
