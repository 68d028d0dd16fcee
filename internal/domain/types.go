package domain

import "time"

// Provider selects which transcription backend handles a recording.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderCustom Provider = "custom"
	ProviderLocal  Provider = "local"
)

// DefaultOpenAIBaseURL is used when no custom endpoint is configured.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// Settings contains user-selectable runtime configuration.
type Settings struct {
	Provider           Provider `json:"provider"`
	OpenAIAPIKey       string   `json:"openaiApiKey"`
	CustomBaseURL      string   `json:"customBaseUrl"`
	CustomAPIKey       string   `json:"customApiKey"`
	TranscriptionModel string   `json:"transcriptionModel"`
	Language           string   `json:"language"`
	PreferStreaming    bool     `json:"preferStreaming"`

	SummaryBaseURL string `json:"summaryBaseUrl"`
	SummaryAPIKey  string `json:"summaryApiKey"`
	SummaryModel   string `json:"summaryModel"`

	ChunkingEnabled bool `json:"chunkingEnabled"`
	ChunkSize       int  `json:"chunkSize"`

	SummaryPrompt string `json:"summaryPrompt"`
	ChunkPrompt   string `json:"chunkPrompt"`
	CombinePrompt string `json:"combinePrompt"`
	TitlePrompt   string `json:"titlePrompt"`

	AutoSummarize bool `json:"autoSummarize"`
	AutoTitle     bool `json:"autoTitle"`

	RecordingsDir string `json:"recordingsDir"`
	ImportDir     string `json:"importDir"`

	LocalWhisperPath string `json:"localWhisperPath"`
	LocalModelPath   string `json:"localModelPath"`
}

// SettingsSnapshot is the configuration copied at enqueue time so that a
// later settings change cannot alter a job already in flight.
type SettingsSnapshot struct {
	Settings
}

// Snapshot copies live settings into an immutable per-job snapshot.
func Snapshot(s Settings) SettingsSnapshot {
	return SettingsSnapshot{Settings: s}
}

// TranscriptionBaseURL resolves the transcription endpoint base URL.
func (s SettingsSnapshot) TranscriptionBaseURL() string {
	if s.Provider == ProviderCustom && s.CustomBaseURL != "" {
		return s.CustomBaseURL
	}
	return DefaultOpenAIBaseURL
}

// TranscriptionAPIKey resolves the API key for the selected provider.
func (s SettingsSnapshot) TranscriptionAPIKey() string {
	if s.Provider == ProviderCustom && s.CustomAPIKey != "" {
		return s.CustomAPIKey
	}
	return s.OpenAIAPIKey
}

// ChatBaseURL resolves the chat-completions endpoint base URL.
func (s SettingsSnapshot) ChatBaseURL() string {
	if s.SummaryBaseURL != "" {
		return s.SummaryBaseURL
	}
	return DefaultOpenAIBaseURL
}

// ChatAPIKey resolves the API key for summarization calls.
func (s SettingsSnapshot) ChatAPIKey() string {
	if s.SummaryAPIKey != "" {
		return s.SummaryAPIKey
	}
	return s.OpenAIAPIKey
}

// ShouldStream reports whether a streaming transcription attempt is wanted.
func (s SettingsSnapshot) ShouldStream() bool {
	return s.PreferStreaming && s.Provider != ProviderLocal
}

// TranscriptionConfig is the reduced configuration used by the protocol client.
type TranscriptionConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// TranscriptionConfig derives the reduced view used for transcription calls.
func (s SettingsSnapshot) TranscriptionConfig() TranscriptionConfig {
	return TranscriptionConfig{
		BaseURL: s.TranscriptionBaseURL(),
		APIKey:  s.TranscriptionAPIKey(),
		Model:   s.TranscriptionModel,
	}
}

// ChatConfig is the reduced configuration used by the chat-completion client.
type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// ChatConfig derives the reduced view used for summarization calls.
func (s SettingsSnapshot) ChatConfig() ChatConfig {
	return ChatConfig{
		BaseURL: s.ChatBaseURL(),
		APIKey:  s.ChatAPIKey(),
		Model:   s.SummaryModel,
	}
}

// Record is one recording with its derived artifacts.
type Record struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	AudioPath        string    `json:"audioPath"`
	CreatedAt        time.Time `json:"createdAt"`
	HasTranscription bool      `json:"hasTranscription"`
	Transcription    string    `json:"transcription"`
	HasSummary       bool      `json:"hasSummary"`
	Summary          string    `json:"summary"`
}

// TranscriptionUpdate is one fragment emitted by a streaming transcription.
type TranscriptionUpdate struct {
	Partial   bool      `json:"partial"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
