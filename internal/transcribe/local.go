package transcribe

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pfrankov/vibe-scribe-sub000/internal/domain"
)

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

// Run executes one command and captures stdout/stderr and exit code.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// LocalEngine transcribes fully on-device with ffmpeg and whisper.cpp.
// Every failure is classified as engine-unavailable so the orchestrator
// falls back to the network path instead of failing the job.
type LocalEngine struct {
	runner    commandRunner
	lookPath  func(string) (string, error)
	mkdirTemp func(dir, pattern string) (string, error)
	removeAll func(path string) error
	stat      func(name string) (os.FileInfo, error)
	readFile  func(name string) ([]byte, error)
}

// NewLocalEngine constructs the production engine with OS dependencies.
func NewLocalEngine() *LocalEngine {
	return &LocalEngine{
		runner:    &execRunner{},
		lookPath:  exec.LookPath,
		mkdirTemp: os.MkdirTemp,
		removeAll: os.RemoveAll,
		stat:      os.Stat,
		readFile:  os.ReadFile,
	}
}

// NewLocalEngineForTests constructs an engine with injectable dependencies.
func NewLocalEngineForTests(
	runner commandRunner,
	lookPath func(string) (string, error),
	mkdirTemp func(dir, pattern string) (string, error),
	removeAll func(path string) error,
	stat func(name string) (os.FileInfo, error),
	readFile func(name string) ([]byte, error),
) *LocalEngine {
	return &LocalEngine{
		runner:    runner,
		lookPath:  lookPath,
		mkdirTemp: mkdirTemp,
		removeAll: removeAll,
		stat:      stat,
		readFile:  readFile,
	}
}

// Transcribe runs the audio through whisper.cpp and returns the transcript.
func (e *LocalEngine) Transcribe(ctx context.Context, audioPath string, snap domain.SettingsSnapshot) (string, error) {
	whisperPath := strings.TrimSpace(snap.LocalWhisperPath)
	if whisperPath == "" {
		whisperPath = "whisper.cpp"
	}
	if _, err := e.lookPath(whisperPath); err != nil {
		return "", domain.WrapError(domain.KindEngineUnavailable, "whisper binary not found: "+whisperPath, err)
	}
	if _, err := e.lookPath("ffmpeg"); err != nil {
		return "", domain.WrapError(domain.KindEngineUnavailable, "ffmpeg not found", err)
	}

	modelPath := strings.TrimSpace(snap.LocalModelPath)
	if modelPath == "" {
		return "", domain.NewError(domain.KindEngineUnavailable, "local model path is not configured")
	}
	if _, err := e.stat(modelPath); err != nil {
		return "", domain.WrapError(domain.KindEngineUnavailable, "cannot access local model: "+modelPath, err)
	}

	tempDir, err := e.mkdirTemp("", "vibe-scribe-*")
	if err != nil {
		return "", domain.WrapError(domain.KindEngineUnavailable, "failed to create temporary workspace", err)
	}
	defer func() { _ = e.removeAll(tempDir) }()

	wavPath := filepath.Join(tempDir, "preprocessed-16k-mono.wav")
	if _, err := e.runner.Run(ctx, "ffmpeg", buildFFmpegArgs(audioPath, wavPath)...); err != nil {
		return "", domain.WrapError(domain.KindEngineUnavailable, "ffmpeg audio conversion failed", err)
	}
	if _, err := e.stat(wavPath); err != nil {
		return "", domain.WrapError(domain.KindEngineUnavailable, "ffmpeg completed but output file is missing", err)
	}

	textBase := filepath.Join(tempDir, "transcript")
	if _, err := e.runner.Run(ctx, whisperPath, buildWhisperArgs(modelPath, wavPath, textBase, snap.Language)...); err != nil {
		return "", domain.WrapError(domain.KindEngineUnavailable, "whisper.cpp transcription failed", err)
	}

	content, err := e.readFile(textBase + ".txt")
	if err != nil {
		return "", domain.WrapError(domain.KindEngineUnavailable, "whisper.cpp completed but transcript file is missing", err)
	}

	return strings.TrimSpace(string(content)), nil
}

// normalizeLanguage maps "auto" and empty language to no CLI override.
func normalizeLanguage(raw string) string {
	lang := strings.TrimSpace(raw)
	if lang == "" || strings.EqualFold(lang, "auto") {
		return ""
	}
	return lang
}

// buildFFmpegArgs builds preprocessing CLI args for mono 16k PCM WAV output.
func buildFFmpegArgs(inputPath, outPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outPath,
	}
}

// buildWhisperArgs builds whisper.cpp args for txt transcript export.
func buildWhisperArgs(modelPath, audioPath, textBase, language string) []string {
	args := []string{
		"-m", modelPath,
		"-f", audioPath,
		"-of", textBase,
		"-otxt",
	}

	if lang := normalizeLanguage(language); lang != "" {
		args = append(args, "-l", lang)
	}

	return args
}
