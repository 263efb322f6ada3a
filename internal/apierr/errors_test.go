package apierr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesOnKind(t *testing.T) {
	err := NewConflict("email taken")

	if !errors.Is(err, NewConflict("different message")) {
		t.Error("two conflicts did not match")
	}
	if errors.Is(err, NewForbidden()) {
		t.Error("conflict matched forbidden")
	}

	wrapped := fmt.Errorf("calling server: %w", err)
	if !IsKind(wrapped, KindConflict) {
		t.Error("IsKind failed through wrapping")
	}
}

func TestFromError(t *testing.T) {
	plain := errors.New("mystery")
	got := FromError(plain)
	if got.Kind != KindUnknown || got.Message != "mystery" {
		t.Errorf("FromError = %+v", got)
	}
	if !errors.Is(got, plain) {
		t.Error("base error lost")
	}

	classified := NewRequestTimeout(nil)
	if FromError(fmt.Errorf("wrap: %w", classified)) != classified {
		t.Error("classified error not recovered")
	}
}

func TestServerErrorMessage(t *testing.T) {
	withMsg := NewServerError(500, "boom")
	if withMsg.Error() != "server error (status 500): boom" {
		t.Errorf("Error() = %q", withMsg.Error())
	}

	withoutMsg := NewServerError(502, "")
	if withoutMsg.Error() != "server error (status 502)" {
		t.Errorf("Error() = %q", withoutMsg.Error())
	}
}
