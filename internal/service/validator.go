package service

import (
	"fmt"
	"strings"

	"commandlayer/internal/dto"

	"github.com/google/uuid"
)

// ActionAssignTask is the only action in the supported catalog.
const ActionAssignTask = "assign_task"

var assignTaskPayloadKeys = map[string]bool{
	"asset_id": true,
	"task_id":  true,
}

// CommandValidator checks requests structurally before resolution and
// action/payload pairs semantically after it.
type CommandValidator struct{}

func NewCommandValidator() *CommandValidator {
	return &CommandValidator{}
}

// ValidateRequest rejects commands that cannot enter the pipeline: blank
// requested_by, or neither an action nor raw text to resolve one from.
func (v *CommandValidator) ValidateRequest(cmd *dto.CommandRequest) error {
	if strings.TrimSpace(cmd.RequestedBy) == "" {
		return NewError(CodeInvalidRequest, "requested_by is required")
	}
	if strings.TrimSpace(cmd.Action) == "" && strings.TrimSpace(cmd.RawText) == "" {
		return NewError(CodeInvalidRequest, "either action or raw_text is required")
	}
	return nil
}

// ValidateActionAndPayload checks the resolved pair against the action
// catalog and returns the normalized payload. Normalization strips anything
// outside the action's schema so persisted payloads stay minimal.
func (v *CommandValidator) ValidateActionAndPayload(action string, payload map[string]any) (string, map[string]any, error) {
	action = strings.TrimSpace(action)
	if action != ActionAssignTask {
		return "", nil, NewError(CodeInvalidRequest, fmt.Sprintf("unsupported action: %q", action))
	}

	for key := range payload {
		if !assignTaskPayloadKeys[key] {
			return "", nil, NewError(CodeInvalidPayload, fmt.Sprintf("unexpected payload key: %q", key))
		}
	}

	assetID, err := requireUUID(payload, "asset_id")
	if err != nil {
		return "", nil, err
	}
	taskID, err := requireUUID(payload, "task_id")
	if err != nil {
		return "", nil, err
	}

	normalized := map[string]any{
		"asset_id": assetID.String(),
		"task_id":  taskID.String(),
	}
	return action, normalized, nil
}

func requireUUID(payload map[string]any, key string) (uuid.UUID, error) {
	value, ok := payload[key]
	if !ok {
		return uuid.Nil, NewError(CodeInvalidPayload, fmt.Sprintf("%s is required", key))
	}
	str, ok := value.(string)
	if !ok {
		return uuid.Nil, NewError(CodeInvalidPayload, fmt.Sprintf("%s must be a string", key))
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, NewError(CodeInvalidPayload, fmt.Sprintf("%s must be a valid uuid", key))
	}
	return id, nil
}
