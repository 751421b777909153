package ai

import (
	"context"
	"fmt"
)

// MockCompleter answers deterministically without any network call.
type MockCompleter struct{}

func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

func (m *MockCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	return fmt.Sprintf("You asked: %q. This is general legal information, not legal advice.", req.UserText), nil
}
