package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrankov/vibe-scribe-sub000/internal/domain"
)

// Default prompt templates. {text} is replaced with the transcript or the
// concatenated chunk summaries; {summary} with the final summary.
const (
	DefaultSummaryPrompt = "Summarize the following transcript. Keep the key points, decisions, and action items:\n\n{text}"
	DefaultChunkPrompt   = "Summarize this part of a longer transcript. Keep the key points:\n\n{text}"
	DefaultCombinePrompt = "Combine the following partial summaries into one coherent summary:\n\n{text}"
	DefaultTitlePrompt   = "Suggest a short title (5 words max) for a recording with this summary. Reply with the title only:\n\n{summary}"
)

// DefaultSettings returns baseline configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		Provider:           domain.ProviderOpenAI,
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		TranscriptionModel: "whisper-1",
		Language:           "auto",
		PreferStreaming:    true,
		SummaryModel:       "gpt-4o-mini",
		ChunkingEnabled:    true,
		ChunkSize:          4000,
		SummaryPrompt:      DefaultSummaryPrompt,
		ChunkPrompt:        DefaultChunkPrompt,
		CombinePrompt:      DefaultCombinePrompt,
		TitlePrompt:        DefaultTitlePrompt,
		AutoSummarize:      true,
		AutoTitle:          true,
		RecordingsDir:      filepath.Join(homeDir, ".vibe-scribe", "recordings"),
	}
}

// Normalize trims user inputs and restores required defaults when empty.
func Normalize(s domain.Settings) domain.Settings {
	s.CustomBaseURL = strings.TrimRight(strings.TrimSpace(s.CustomBaseURL), "/")
	s.SummaryBaseURL = strings.TrimRight(strings.TrimSpace(s.SummaryBaseURL), "/")
	s.OpenAIAPIKey = strings.TrimSpace(s.OpenAIAPIKey)
	s.CustomAPIKey = strings.TrimSpace(s.CustomAPIKey)
	s.SummaryAPIKey = strings.TrimSpace(s.SummaryAPIKey)
	s.TranscriptionModel = strings.TrimSpace(s.TranscriptionModel)
	s.SummaryModel = strings.TrimSpace(s.SummaryModel)
	s.Language = strings.TrimSpace(s.Language)

	if s.Provider == "" {
		s.Provider = domain.ProviderOpenAI
	}
	if s.TranscriptionModel == "" {
		s.TranscriptionModel = "whisper-1"
	}
	if s.Language == "" {
		s.Language = "auto"
	}
	if s.ChunkSize <= 0 {
		s.ChunkSize = 4000
	}
	if s.SummaryPrompt == "" {
		s.SummaryPrompt = DefaultSummaryPrompt
	}
	if s.ChunkPrompt == "" {
		s.ChunkPrompt = DefaultChunkPrompt
	}
	if s.CombinePrompt == "" {
		s.CombinePrompt = DefaultCombinePrompt
	}
	if s.TitlePrompt == "" {
		s.TitlePrompt = DefaultTitlePrompt
	}
	if s.RecordingsDir == "" {
		s.RecordingsDir = DefaultSettings().RecordingsDir
	}
	return s
}
