package dto

import "time"

type CommandLogItem struct {
	ID         string         `json:"id"`
	RawText    string         `json:"raw_text"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	APIKeyID   *string        `json:"api_key_id,omitempty"`
	APIKeyName *string        `json:"api_key_name,omitempty"`
	Role       *string        `json:"role,omitempty"`
	Intent     map[string]any `json:"intent_json"`
}

type AssetSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TaskSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
