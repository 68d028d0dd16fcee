package domain

import (
	"errors"
	"fmt"
	"testing"
)

// TestKindOfClassifiesWrappedErrors checks classification through wrapping.
func TestKindOfClassifiesWrappedErrors(t *testing.T) {
	base := NewError(KindStreamingNotSupported, "server ignored stream parameter")
	wrapped := fmt.Errorf("transcribe: %w", base)

	if got := KindOf(wrapped); got != KindStreamingNotSupported {
		t.Fatalf("KindOf() = %q, want %q", got, KindStreamingNotSupported)
	}
	if !IsKind(wrapped, KindStreamingNotSupported) {
		t.Fatal("IsKind() = false, want true")
	}
}

// TestKindOfUnclassified checks plain errors map to the empty kind.
func TestKindOfUnclassified(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != "" {
		t.Fatalf("KindOf() = %q, want empty", got)
	}
}

// TestHTTPErrorMessage verifies the status code appears in the message.
func TestHTTPErrorMessage(t *testing.T) {
	err := NewHTTPError(503, "overloaded")
	want := "server returned HTTP 503: overloaded"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

// TestChunkErrorNamesIndex verifies the failing chunk index is surfaced.
func TestChunkErrorNamesIndex(t *testing.T) {
	cause := errors.New("timeout")
	err := NewChunkError(1, cause)
	if err.ChunkIndex != 1 {
		t.Fatalf("ChunkIndex = %d, want 1", err.ChunkIndex)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected chunk error to wrap its cause")
	}
	want := "summarization failed at chunk 1: timeout"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
