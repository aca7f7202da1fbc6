package service

import (
	"regexp"
	"strings"

	"commandlayer/internal/intent"
)

const uuidPattern = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

var (
	// Explicit "assign task <id> to asset <id>" phrase, English or
	// Portuguese verb forms. The strongest signal.
	assignPhraseRegex = regexp.MustCompile(
		`(?i)(?:assign|atribuir)\s+task\s+(` + uuidPattern + `).*?(?:to|ao)\s+asset\s+(` + uuidPattern + `)`,
	)
	assetKeyRegex = regexp.MustCompile(`(?i)asset_id\s*[:=]\s*(` + uuidPattern + `)`)
	taskKeyRegex  = regexp.MustCompile(`(?i)task_id\s*[:=]\s*(` + uuidPattern + `)`)
)

const patternModel = "pattern"

// resolvePattern extracts an assign_task intent deterministically. The
// explicit phrase wins over independent key-value mentions for the same
// field; fields still missing are filled from the fallback payload. The
// phrase yields confidence 1.0 when it supplies both ids; any field taken
// from a weak key-value mention or from the fallback drops it to 0.7.
func resolvePattern(rawText string, fallback map[string]any) intent.ResolvedIntent {
	result := intent.ResolvedIntent{
		Provider: intent.ProviderPreAI,
		Model:    patternModel,
	}

	if strings.TrimSpace(rawText) == "" {
		result.Err = intent.ErrRawTextRequired
		return result
	}

	var assetID, taskID string
	weak := false

	if m := assignPhraseRegex.FindStringSubmatch(rawText); m != nil {
		taskID = m[1]
		assetID = m[2]
	}
	if assetID == "" {
		if m := assetKeyRegex.FindStringSubmatch(rawText); m != nil {
			assetID = m[1]
			weak = true
		}
	}
	if taskID == "" {
		if m := taskKeyRegex.FindStringSubmatch(rawText); m != nil {
			taskID = m[1]
			weak = true
		}
	}
	if assetID == "" {
		if v, ok := fallback["asset_id"].(string); ok && v != "" {
			assetID = v
			weak = true
		}
	}
	if taskID == "" {
		if v, ok := fallback["task_id"].(string); ok && v != "" {
			taskID = v
			weak = true
		}
	}

	if assetID == "" || taskID == "" {
		result.Err = intent.ErrMissingFields
		return result
	}

	result.Action = ActionAssignTask
	result.Payload = map[string]any{
		"asset_id": assetID,
		"task_id":  taskID,
	}
	result.Confidence = 1.0
	if weak {
		result.Confidence = 0.7
	}
	return result
}
