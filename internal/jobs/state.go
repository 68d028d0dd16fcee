package jobs

// maxStreamingChunks bounds the rolling window of live text fragments.
const maxStreamingChunks = 10

// State is the observable processing state of one recording. It is created
// lazily on first access and lives for the app session; all mutation goes
// through the service's single job worker.
type State struct {
	IsTranscribing            bool     `json:"isTranscribing"`
	IsSummarizing             bool     `json:"isSummarizing"`
	TranscriptionError        string   `json:"transcriptionError,omitempty"`
	SummaryError              string   `json:"summaryError,omitempty"`
	IsStreaming               bool     `json:"isStreaming"`
	StreamingChunks           []string `json:"streamingChunks,omitempty"`
	PendingTranscriptionCount int      `json:"pendingTranscriptionCount"`
	PendingSummarizationCount int      `json:"pendingSummarizationCount"`
}

// clone returns a copy safe to hand to observers.
func (s *State) clone() State {
	out := *s
	out.StreamingChunks = append([]string(nil), s.StreamingChunks...)
	return out
}

// pushChunk appends a live fragment, keeping only the most recent window.
func (s *State) pushChunk(text string) {
	if text == "" {
		return
	}
	s.StreamingChunks = append(s.StreamingChunks, text)
	if len(s.StreamingChunks) > maxStreamingChunks {
		trim := len(s.StreamingChunks) - maxStreamingChunks
		s.StreamingChunks = append([]string(nil), s.StreamingChunks[trim:]...)
	}
}
