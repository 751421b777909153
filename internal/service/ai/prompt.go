package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/legal-chat/backend/internal/model/persona"
)

// PromptBuilder resolves the system instruction sent with every completion.
type PromptBuilder struct {
	personas persona.Store
}

func NewPromptBuilder(personas persona.Store) *PromptBuilder {
	return &PromptBuilder{personas: personas}
}

// SystemInstruction returns the instruction for personaID; empty selects the
// default persona.
func (b *PromptBuilder) SystemInstruction(personaID string) (string, error) {
	p, err := persona.Resolve(b.personas, personaID)
	if err != nil {
		return "", err
	}
	return BuildSystemPrompt(p), nil
}

// BuildSystemPrompt uses the persona's own instruction verbatim and falls back
// to one assembled from its profile.
func BuildSystemPrompt(p persona.Persona) string {
	if p.Instruction != "" {
		return p.Instruction
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s.", p.Name, p.Title)
	if p.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(p.Description)
	}
	if len(p.Expertise) > 0 {
		b.WriteString("\n\nTopics you cover:\n- ")
		b.WriteString(strings.Join(p.Expertise, "\n- "))
	}
	if p.Tone != "" {
		fmt.Fprintf(&b, "\n\nKeep your tone %s.", p.Tone)
	}
	return b.String()
}
