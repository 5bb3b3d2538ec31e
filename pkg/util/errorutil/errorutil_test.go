package errorutil

import (
	"errors"
	"fmt"
	"testing"
)

func TestToDomainErrorKeepsDomainErrors(t *testing.T) {
	cause := errors.New("discord: 404")
	wrapped := fmt.Errorf("create: %w", NewCategoryNotFound("123", cause))

	got := ToDomainError(wrapped)
	if got.Code != CodeNotFound {
		t.Fatalf("code = %q, want %q", got.Code, CodeNotFound)
	}
	if got.Details["category_id"] != "123" {
		t.Errorf("details = %v", got.Details)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}

func TestToDomainErrorMapsUnknown(t *testing.T) {
	got := ToDomainError(errors.New("boom"))
	if got.Code != CodeInternal {
		t.Fatalf("code = %q, want %q", got.Code, CodeInternal)
	}
	if ToDomainError(nil) != nil {
		t.Fatal("nil error should map to nil")
	}
}

func TestIsCode(t *testing.T) {
	err := NewArchivalFailed(errors.New("upload"))
	if !IsCode(err, CodeArchivalFailed) {
		t.Error("expected archival code")
	}
	if IsCode(err, CodeDeletionFailed) {
		t.Error("unexpected deletion code")
	}
	if IsCode(errors.New("plain"), CodeInternal) {
		t.Error("plain errors carry no code")
	}
}
