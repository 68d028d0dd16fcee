package diagnostics

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrankov/vibe-scribe-sub000/internal/domain"
)

// Checker validates the configured endpoints and the local environment.
type Checker struct {
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// NewCheckerForTests creates a checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		stat:       stat,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}

// Run executes all checks for the active settings and returns a report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	snapshot := domain.Snapshot(settings)

	var items []domain.DiagnosticItem
	if settings.Provider == domain.ProviderLocal {
		whisper := settings.LocalWhisperPath
		if strings.TrimSpace(whisper) == "" {
			whisper = "whisper.cpp"
		}
		items = append(items,
			c.checkTool(whisper),
			c.checkTool("ffmpeg"),
			c.checkModelFile(settings.LocalModelPath),
		)
	} else {
		items = append(items,
			c.checkEndpoint("transcription_endpoint", "Transcription endpoint", snapshot.TranscriptionBaseURL()),
			checkAPIKey("transcription_api_key", "Transcription API key", settings.Provider, snapshot.TranscriptionAPIKey()),
		)
	}
	items = append(items,
		c.checkEndpoint("summary_endpoint", "Summarization endpoint", snapshot.ChatBaseURL()),
		checkAPIKey("summary_api_key", "Summarization API key", settings.Provider, snapshot.ChatAPIKey()),
		c.checkRecordingsDir(settings.RecordingsDir),
	)
	if strings.TrimSpace(settings.ImportDir) != "" {
		items = append(items, c.checkImportDir(settings.ImportDir))
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkTool verifies a required CLI executable is on PATH.
func (c *Checker) checkTool(name string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "tool_" + filepath.Base(name),
		Name: filepath.Base(name),
	}

	path, err := c.lookPath(name)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Tool not found in PATH: %s", name)
		item.Hint = "Install it and ensure the binary is available on PATH, or switch to a server provider."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

// checkModelFile validates the configured on-device model file.
func (c *Checker) checkModelFile(modelPath string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "local_model",
		Name: "Local model",
	}

	if strings.TrimSpace(modelPath) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Local model path is empty."
		item.Hint = "Download a whisper.cpp model and set its path in settings."
		return item
	}

	info, err := c.stat(modelPath)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		if errors.Is(err, os.ErrNotExist) {
			item.Message = fmt.Sprintf("Model file does not exist: %s", modelPath)
		} else {
			item.Message = fmt.Sprintf("Cannot access model file: %s", modelPath)
		}
		item.Hint = "Download a whisper.cpp model and set its path in settings."
		return item
	}
	if info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Model path is a directory: %s", modelPath)
		item.Hint = "Point the model path at a .bin or .gguf file."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Model file found: %s", modelPath)
	return item
}

// checkEndpoint validates a configured server base URL.
func (c *Checker) checkEndpoint(id, name, baseURL string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{ID: id, Name: name}

	if strings.TrimSpace(baseURL) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Endpoint URL is empty."
		item.Hint = "Set the server base URL in settings."
		return item
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Invalid endpoint URL: %s", baseURL)
		item.Hint = "Use a full http:// or https:// URL."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Endpoint configured: %s", baseURL)
	return item
}

// checkAPIKey verifies a key is present. OpenAI rejects unauthenticated
// requests, so a missing key is a failure there and a warning for
// self-hosted servers that may not require one.
func checkAPIKey(id, name string, provider domain.Provider, key string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{ID: id, Name: name}

	if strings.TrimSpace(key) != "" {
		item.Status = domain.DiagnosticStatusPass
		item.Message = "API key is set."
		return item
	}

	if provider == domain.ProviderOpenAI {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "API key is missing."
		item.Hint = "Set the OpenAI API key in settings or the OPENAI_API_KEY environment variable."
		return item
	}

	item.Status = domain.DiagnosticStatusWarn
	item.Message = "No API key configured; requests are sent unauthenticated."
	return item
}

// checkRecordingsDir validates recordings directory existence and write access.
func (c *Checker) checkRecordingsDir(dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "recordings_dir",
		Name: "Recordings directory",
	}

	if strings.TrimSpace(dir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Recordings directory is empty."
		item.Hint = "Set a directory where recordings can be stored."
		return item
	}

	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create recordings directory: %s", dir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Recordings directory is not writable: %s", dir)
		item.Hint = "Choose a writable directory for recordings."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}

// checkImportDir validates the optional watch folder.
func (c *Checker) checkImportDir(dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "import_dir",
		Name: "Import folder",
	}

	info, err := c.stat(dir)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		if errors.Is(err, os.ErrNotExist) {
			item.Message = fmt.Sprintf("Import folder does not exist: %s", dir)
		} else {
			item.Message = fmt.Sprintf("Cannot access import folder: %s", dir)
		}
		item.Hint = "Create the folder or clear the import folder setting."
		return item
	}
	if !info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Import path is not a directory: %s", dir)
		item.Hint = "Point the import folder setting at a directory."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Watching folder: %s", dir)
	return item
}
