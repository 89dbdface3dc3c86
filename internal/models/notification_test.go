package models

import (
	"errors"
	"strings"
	"testing"
)

func TestActionStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to ActionStatus
		want     bool
	}{
		{ActionNone, ActionApplied, true},
		{ActionNone, ActionDismissed, true},
		{ActionApplied, ActionAccepted, true},
		{ActionApplied, ActionRejected, true},
		{ActionNone, ActionRejected, false},
		{ActionNone, ActionAccepted, false},
		{ActionAccepted, ActionApplied, false},
		{ActionRejected, ActionApplied, false},
		{ActionDismissed, ActionApplied, false},
		{ActionApplied, ActionDismissed, false},
		{ActionNone, ActionNone, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateTransition_path(t *testing.T) {
	status := ActionNone
	for _, next := range []ActionStatus{ActionApplied, ActionAccepted} {
		if err := ValidateTransition(status, next); err != nil {
			t.Fatalf("%s -> %s: %v", status, next, err)
		}
		status = next
	}
	if !status.IsTerminal() {
		t.Errorf("accepted should be terminal")
	}
	err := ValidateTransition(status, ActionApplied)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("accepted -> applied: got %v, want ErrInvalidTransition", err)
	}
	if err == nil || !strings.Contains(err.Error(), "accepted is final") {
		t.Errorf("error should name the final status: %v", err)
	}
	if err := ValidateTransition(ActionNone, ActionAccepted); err == nil || strings.Contains(err.Error(), "final") {
		t.Errorf("none -> accepted: got %v, want a plain transition error", err)
	}
}

func TestValidateTransition_unknownStatus(t *testing.T) {
	err := ValidateTransition(ActionNone, ActionStatus("archived"))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("got %v, want ErrInvalidTransition", err)
	}
}
