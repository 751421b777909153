package chat

// A session has no record of its own: it is the set of messages sharing a
// session id. The types below are the session-scoped inputs and outputs of
// the chat service.

// ChatRequest is one user submission.
type ChatRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// ChatReply carries the completion back to the caller.
type ChatReply struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// DeleteResult reports a history purge.
type DeleteResult struct {
	DeletedCount int64  `json:"deleted_count"`
	SessionID    string `json:"session_id"`
}
