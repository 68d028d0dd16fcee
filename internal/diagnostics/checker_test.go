package diagnostics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pfrankov/vibe-scribe-sub000/internal/domain"
)

// TestCheckerRunOpenAIAllPass validates the happy path for the hosted provider.
func TestCheckerRunOpenAIAllPass(t *testing.T) {
	checker := NewCheckerForTests(
		func(name string) (string, error) { return "/usr/local/bin/" + name, nil },
		os.Stat,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	report := checker.Run(domain.Settings{
		Provider:      domain.ProviderOpenAI,
		OpenAIAPIKey:  "sk-test",
		RecordingsDir: filepath.Join(t.TempDir(), "recordings"),
	})

	if report.HasFailures {
		t.Fatalf("expected no failures, got %+v", report.Items)
	}
	assertStatusByID(t, report, "transcription_endpoint", domain.DiagnosticStatusPass)
	assertStatusByID(t, report, "transcription_api_key", domain.DiagnosticStatusPass)
	assertStatusByID(t, report, "recordings_dir", domain.DiagnosticStatusPass)
}

// TestCheckerRunOpenAIMissingKeyFails validates the hosted provider needs a key.
func TestCheckerRunOpenAIMissingKeyFails(t *testing.T) {
	checker := NewCheckerForTests(
		func(name string) (string, error) { return "/usr/local/bin/" + name, nil },
		os.Stat,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	report := checker.Run(domain.Settings{
		Provider:      domain.ProviderOpenAI,
		RecordingsDir: t.TempDir(),
	})

	if !report.HasFailures {
		t.Fatal("expected failures")
	}
	assertStatusByID(t, report, "transcription_api_key", domain.DiagnosticStatusFail)
}

// TestCheckerRunCustomMissingKeyWarns validates self-hosted servers only warn.
func TestCheckerRunCustomMissingKeyWarns(t *testing.T) {
	checker := NewCheckerForTests(
		func(name string) (string, error) { return "/usr/local/bin/" + name, nil },
		os.Stat,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	report := checker.Run(domain.Settings{
		Provider:      domain.ProviderCustom,
		CustomBaseURL: "http://localhost:8080/v1",
		RecordingsDir: t.TempDir(),
	})

	if report.HasFailures {
		t.Fatalf("expected no failures, got %+v", report.Items)
	}
	assertStatusByID(t, report, "transcription_api_key", domain.DiagnosticStatusWarn)
}

// TestCheckerRunInvalidEndpointFails validates URL validation.
func TestCheckerRunInvalidEndpointFails(t *testing.T) {
	checker := NewCheckerForTests(
		func(name string) (string, error) { return "/usr/local/bin/" + name, nil },
		os.Stat,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	report := checker.Run(domain.Settings{
		Provider:      domain.ProviderCustom,
		CustomBaseURL: "not a url",
		RecordingsDir: t.TempDir(),
	})

	if !report.HasFailures {
		t.Fatal("expected failures")
	}
	assertStatusByID(t, report, "transcription_endpoint", domain.DiagnosticStatusFail)
}

// TestCheckerRunLocalProvider validates tool and model checks.
func TestCheckerRunLocalProvider(t *testing.T) {
	root := t.TempDir()
	modelFile := filepath.Join(root, "ggml-base.bin")
	if err := os.WriteFile(modelFile, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}

	checker := NewCheckerForTests(
		func(name string) (string, error) { return "/usr/local/bin/" + name, nil },
		os.Stat,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	report := checker.Run(domain.Settings{
		Provider:       domain.ProviderLocal,
		LocalModelPath: modelFile,
		RecordingsDir:  filepath.Join(root, "recordings"),
	})

	if report.HasFailures {
		t.Fatalf("expected no failures, got %+v", report.Items)
	}
	assertStatusByID(t, report, "tool_whisper.cpp", domain.DiagnosticStatusPass)
	assertStatusByID(t, report, "tool_ffmpeg", domain.DiagnosticStatusPass)
	assertStatusByID(t, report, "local_model", domain.DiagnosticStatusPass)
}

// TestCheckerRunLocalMissingToolsAndModel validates failure reporting.
func TestCheckerRunLocalMissingToolsAndModel(t *testing.T) {
	checker := NewCheckerForTests(
		func(string) (string, error) { return "", errors.New("not found") },
		os.Stat,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	report := checker.Run(domain.Settings{
		Provider:       domain.ProviderLocal,
		LocalModelPath: "/path/that/does/not/exist",
		RecordingsDir:  t.TempDir(),
	})

	if !report.HasFailures {
		t.Fatal("expected failures")
	}
	assertStatusByID(t, report, "tool_whisper.cpp", domain.DiagnosticStatusFail)
	assertStatusByID(t, report, "tool_ffmpeg", domain.DiagnosticStatusFail)
	assertStatusByID(t, report, "local_model", domain.DiagnosticStatusFail)
}

// TestCheckerRunImportDir validates the optional watch-folder check.
func TestCheckerRunImportDir(t *testing.T) {
	checker := NewCheckerForTests(
		func(name string) (string, error) { return "/usr/local/bin/" + name, nil },
		os.Stat,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	settings := domain.Settings{
		Provider:      domain.ProviderOpenAI,
		OpenAIAPIKey:  "sk-test",
		RecordingsDir: t.TempDir(),
		ImportDir:     t.TempDir(),
	}
	report := checker.Run(settings)
	assertStatusByID(t, report, "import_dir", domain.DiagnosticStatusPass)

	settings.ImportDir = filepath.Join(t.TempDir(), "missing")
	report = checker.Run(settings)
	assertStatusByID(t, report, "import_dir", domain.DiagnosticStatusFail)
}

// assertStatusByID locates a report item and compares its status.
func assertStatusByID(t *testing.T, report domain.DiagnosticReport, id string, want domain.DiagnosticStatus) {
	t.Helper()
	for _, item := range report.Items {
		if item.ID == id {
			if item.Status != want {
				t.Fatalf("item %s status = %s, want %s (%s)", id, item.Status, want, item.Message)
			}
			return
		}
	}
	t.Fatalf("item %s not found in report", id)
}
