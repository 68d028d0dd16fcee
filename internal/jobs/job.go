package jobs

import "github.com/pfrankov/vibe-scribe-sub000/internal/domain"

// OpKind is the closed set of job operations.
type OpKind string

const (
	OpTranscription OpKind = "transcription"
	OpSummarization OpKind = "summarization"
)

// Job is one queued unit of work for a specific recording. It is immutable
// once created: the settings snapshot pins the configuration a later
// settings change cannot touch.
type Job struct {
	ID              string
	RecordID        string
	Op              OpKind
	PreferStreaming bool
	Automatic       bool
	Settings        domain.SettingsSnapshot
}
