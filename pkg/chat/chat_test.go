package chat

import (
	"errors"
	"fmt"
	"testing"
)

func TestChatRequestValidate(t *testing.T) {
	cr := &ChatRequest{NPCID: "npc_0,1_1"}
	if err := cr.Validate(); err == nil {
		t.Error("expected error for empty message")
	}

	cr.Message = "こんにちは"
	if err := cr.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestErrorWrapping(t *testing.T) {
	err := fmt.Errorf("calling text api: %w", ErrGenerationUnavailable)
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Error("wrapped error should match ErrGenerationUnavailable")
	}
	if errors.Is(err, ErrIncompleteResponse) {
		t.Error("unavailable should not match incomplete")
	}
}
