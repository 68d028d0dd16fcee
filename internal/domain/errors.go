package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies processing failures for propagation decisions.
type ErrorKind string

const (
	KindRecordNotFound        ErrorKind = "record_not_found"
	KindMissingAudioFile      ErrorKind = "missing_audio_file"
	KindInvalidAudioFile      ErrorKind = "invalid_audio_file"
	KindInvalidURL            ErrorKind = "invalid_url"
	KindNetwork               ErrorKind = "network"
	KindStreamingNotSupported ErrorKind = "streaming_not_supported"
	KindHTTP                  ErrorKind = "http"
	KindInvalidResponse       ErrorKind = "invalid_response"
	KindChunkFailed           ErrorKind = "chunk_failed"
	KindSummaryEmpty          ErrorKind = "summary_empty"
	KindEmptyCleanText        ErrorKind = "empty_clean_text"
	KindEngineUnavailable     ErrorKind = "engine_unavailable"
)

// ProcessingError is a classified error with optional payload context.
type ProcessingError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	ChunkIndex int
	Err        error
}

// Error formats the failure for per-recording display.
func (e *ProcessingError) Error() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindHTTP:
		if e.Message == "" {
			return fmt.Sprintf("server returned HTTP %d", e.StatusCode)
		}
		return fmt.Sprintf("server returned HTTP %d: %s", e.StatusCode, e.Message)
	case KindChunkFailed:
		return fmt.Sprintf("summarization failed at chunk %d: %s", e.ChunkIndex, e.Message)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *ProcessingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError creates a classified error with a human-readable message.
func NewError(kind ErrorKind, message string) *ProcessingError {
	return &ProcessingError{Kind: kind, Message: message}
}

// WrapError creates a classified error wrapping an underlying cause.
func WrapError(kind ErrorKind, message string, err error) *ProcessingError {
	return &ProcessingError{Kind: kind, Message: message, Err: err}
}

// NewHTTPError creates an error for a non-2xx response status.
func NewHTTPError(status int, message string) *ProcessingError {
	return &ProcessingError{Kind: KindHTTP, StatusCode: status, Message: message}
}

// NewChunkError creates an error naming the failing summarization chunk.
func NewChunkError(index int, err error) *ProcessingError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &ProcessingError{Kind: KindChunkFailed, ChunkIndex: index, Message: msg, Err: err}
}

// KindOf returns the classification of err, or empty for unclassified errors.
func KindOf(err error) ErrorKind {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
