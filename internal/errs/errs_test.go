package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{Validation("amount", "amount is required"), KindValidation},
		{UnknownChain("solana"), KindUnknownChain},
		{UnsupportedProtocol("wormhole"), KindUnsupportedProtocol},
		{Adapter("stargate", errors.New("dial tcp: timeout")), KindAdapter},
		{NoRoute(), KindNoRoute},
		{errors.New("plain"), Kind("")},
		{nil, Kind("")},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handling request: %w", NoRoute())
	if !Is(err, KindNoRoute) {
		t.Errorf("Expected wrapped error to keep its kind, got %q", KindOf(err))
	}
}

func TestAdapterErrorHidesCause(t *testing.T) {
	cause := errors.New("connect: connection refused 10.0.0.5:443")
	err := Adapter("across", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected cause to stay reachable for logging")
	}

	raw, jsonErr := json.Marshal(err)
	if jsonErr != nil {
		t.Fatalf("Marshal failed: %v", jsonErr)
	}
	if strings.Contains(string(raw), "10.0.0.5") {
		t.Errorf("Raw cause leaked into serialized error: %s", raw)
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	err := Validation("recipient", "recipient is required")
	if err.Field != "recipient" {
		t.Errorf("Field = %q", err.Field)
	}
	if got := err.Error(); got != "validation: recipient: recipient is required" {
		t.Errorf("Error() = %q", got)
	}
}
