package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/pfrankov/vibe-scribe-sub000/internal/chat"
	"github.com/pfrankov/vibe-scribe-sub000/internal/chunk"
	"github.com/pfrankov/vibe-scribe-sub000/internal/config"
	"github.com/pfrankov/vibe-scribe-sub000/internal/diagnostics"
	"github.com/pfrankov/vibe-scribe-sub000/internal/domain"
	"github.com/pfrankov/vibe-scribe-sub000/internal/jobs"
	"github.com/pfrankov/vibe-scribe-sub000/internal/logging"
	"github.com/pfrankov/vibe-scribe-sub000/internal/records"
	"github.com/pfrankov/vibe-scribe-sub000/internal/transcribe"
	"github.com/pfrankov/vibe-scribe-sub000/internal/watch"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var audioDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Audio files",
		Pattern:     "*.m4a;*.mp3;*.wav;*.flac;*.aac;*.ogg",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// StateEvent is the payload pushed to the UI on every processing change.
type StateEvent struct {
	RecordID string     `json:"recordId"`
	State    jobs.State `json:"state"`
}

// App wires configuration, recordings, the job queue, and UI callbacks.
type App struct {
	Store       config.Store
	Records     *records.Store
	Service     *jobs.Service
	Diagnostics domain.DiagnosticReport

	log     *logrus.Logger
	checker *diagnostics.Checker
	assets  fs.FS

	mu          sync.Mutex
	settings    domain.Settings
	runtimeCtx  context.Context
	watcher     *watch.Watcher
	watchCancel context.CancelFunc
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application with optional embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}
	appDir := filepath.Join(homeDir, ".vibe-scribe")

	store := config.NewJSONStore(filepath.Join(appDir, "settings.json"))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings, err = config.ApplyPromptOverrides(settings, filepath.Join(appDir, "prompts.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load prompt overrides: %w", err)
	}

	log := logging.New()
	checker := diagnostics.NewChecker()

	recordStore := records.NewStore()
	service := jobs.NewService(
		recordStore,
		transcribe.NewClient(log),
		transcribe.NewLocalEngine(),
		chat.NewClient(log),
		chunk.Chunk,
		log,
	)

	app := &App{
		Store:       store,
		Records:     recordStore,
		Service:     service,
		Diagnostics: checker.Run(settings),
		log:         log,
		checker:     checker,
		assets:      assets,
		settings:    settings,
	}
	service.Notify(app.emitState)
	return app, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "VibeScribe",
		Width:       1100,
		Height:      760,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown:  a.Shutdown,
		Bind:        []interface{}{a},
	})
}

// Startup stores the Wails runtime context and starts the watch folder.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = ctx
	settings := a.settings
	a.mu.Unlock()

	a.restartWatcher(settings)
}

// Shutdown releases the runtime context and stops the watch folder.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = nil
	a.mu.Unlock()
	a.stopWatcher()
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, refreshes diagnostics, and
// reconfigures the watch folder.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := config.Normalize(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.settings = normalized
	a.Diagnostics = a.checker.Run(normalized)
	a.mu.Unlock()

	a.restartWatcher(normalized)
	return normalized, nil
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns environment checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.settings = settings
	a.Diagnostics = a.checker.Run(settings)
	report := a.Diagnostics
	a.mu.Unlock()

	return report, nil
}

// PickAudioFile opens a native file dialog for audio selection.
func (a *App) PickAudioFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select audio file",
		Filters: audioDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// ImportRecording registers an audio file and starts transcription when the
// settings ask for automatic processing.
func (a *App) ImportRecording(audioPath string) (domain.Record, error) {
	audioPath = strings.TrimSpace(audioPath)
	if audioPath == "" {
		return domain.Record{}, fmt.Errorf("audio path is empty")
	}

	record := a.Records.Import(audioPath)
	a.log.WithFields(logrus.Fields{"record": record.ID, "path": audioPath}).Info("recording imported")

	settings := a.currentSettings()
	snapshot := domain.Snapshot(settings)
	a.Service.EnqueueTranscription(record.ID, settings, settings.AutoSummarize, snapshot.ShouldStream())
	return record, nil
}

// ListRecords returns all recordings, newest first.
func (a *App) ListRecords() []domain.Record {
	return a.Records.List()
}

// GetRecord returns one recording by ID.
func (a *App) GetRecord(recordID string) (domain.Record, error) {
	return a.Records.Get(recordID)
}

// StartTranscription queues a manual transcription for the recording.
func (a *App) StartTranscription(recordID string) error {
	if _, err := a.Records.Get(recordID); err != nil {
		return err
	}
	settings := a.currentSettings()
	snapshot := domain.Snapshot(settings)
	a.Service.EnqueueTranscription(recordID, settings, false, snapshot.ShouldStream())
	return nil
}

// StartSummarization queues a manual summarization for the recording.
func (a *App) StartSummarization(recordID string) error {
	if _, err := a.Records.Get(recordID); err != nil {
		return err
	}
	a.Service.EnqueueSummarization(recordID, a.currentSettings(), false)
	return nil
}

// ProcessingState returns the recording's queue and progress state.
func (a *App) ProcessingState(recordID string) jobs.State {
	return a.Service.State(recordID)
}

// emitState pushes a state snapshot to the UI.
func (a *App) emitState(recordID string, state jobs.State) {
	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "record:state", StateEvent{RecordID: recordID, State: state})
	}
}

// restartWatcher replaces any running watch folder with one for the
// configured import directory, or stops watching when it is unset.
func (a *App) restartWatcher(settings domain.Settings) {
	a.stopWatcher()

	dir := strings.TrimSpace(settings.ImportDir)
	if dir == "" {
		return
	}

	watcher, err := watch.New(dir,
		func(path string) (string, error) {
			return a.Records.Import(path).ID, nil
		},
		func(recordID string) {
			current := a.currentSettings()
			snapshot := domain.Snapshot(current)
			a.Service.EnqueueTranscription(recordID, current, current.AutoSummarize, snapshot.ShouldStream())
		},
		a.log,
	)
	if err != nil {
		a.log.WithError(err).WithField("dir", dir).Error("cannot watch import folder")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.watcher = watcher
	a.watchCancel = cancel
	a.mu.Unlock()

	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			a.log.WithError(err).Error("import folder watcher stopped")
		}
	}()
}

// stopWatcher cancels and closes a running watch folder, if any.
func (a *App) stopWatcher() {
	a.mu.Lock()
	watcher := a.watcher
	cancel := a.watchCancel
	a.watcher = nil
	a.watchCancel = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if watcher != nil {
		_ = watcher.Close()
	}
}

// currentSettings returns the live settings under the lock.
func (a *App) currentSettings() domain.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

// runtimeContext returns the Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}
