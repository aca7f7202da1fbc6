package dto

// CommandRequest is the inbound command. Exactly one of Action or RawText
// must resolve to a non-empty value.
type CommandRequest struct {
	Action      string         `json:"action"`
	Payload     map[string]any `json:"payload"`
	RequestedBy string         `json:"requested_by"`
	RawText     string         `json:"raw_text"`
}

// AssignmentResult reports the outcome of an assign_task execution.
// AlreadyExists marks the idempotent no-op path.
type AssignmentResult struct {
	AssignmentID  string `json:"assignment_id"`
	AlreadyExists bool   `json:"already_exists"`
}

type CommandResponse struct {
	Status string            `json:"status"`
	Action string            `json:"action"`
	Result *AssignmentResult `json:"result"`
}

type ErrorResponse struct {
	ErrorCode string         `json:"error_code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}
