package bootstrap

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pfrankov/vibe-scribe-sub000/internal/chunk"
	"github.com/pfrankov/vibe-scribe-sub000/internal/diagnostics"
	"github.com/pfrankov/vibe-scribe-sub000/internal/domain"
	"github.com/pfrankov/vibe-scribe-sub000/internal/jobs"
	"github.com/pfrankov/vibe-scribe-sub000/internal/logging"
	"github.com/pfrankov/vibe-scribe-sub000/internal/records"
)

// fakeStore returns deterministic settings for App tests.
type fakeStore struct {
	settings domain.Settings
	saved    []domain.Settings
}

func (s *fakeStore) Load() (domain.Settings, error) {
	return s.settings, nil
}

func (s *fakeStore) Save(settings domain.Settings) error {
	s.settings = settings
	s.saved = append(s.saved, settings)
	return nil
}

// fakeTranscriber returns a fixed transcript.
type fakeTranscriber struct {
	result string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string, cfg domain.TranscriptionConfig, onUpdate func(domain.TranscriptionUpdate)) (string, error) {
	return f.result, nil
}

func (f *fakeTranscriber) TranscribeRequest(ctx context.Context, audioPath string, cfg domain.TranscriptionConfig) (string, error) {
	return f.result, nil
}

// fakeCompleter returns a fixed completion.
type fakeCompleter struct {
	result string
}

func (f *fakeCompleter) Complete(ctx context.Context, cfg domain.ChatConfig, prompt string) (string, error) {
	return f.result, nil
}

// statAlwaysExists makes every imported audio file appear readable.
func statAlwaysExists(string) (os.FileInfo, error) {
	return nil, nil
}

// newTestApp wires an App with fakes and an always-present audio file.
func newTestApp(settings domain.Settings) *App {
	recordStore := records.NewStoreForTests(statAlwaysExists)
	service := jobs.NewService(
		recordStore,
		&fakeTranscriber{result: "transcript text"},
		nil,
		&fakeCompleter{result: "summary text"},
		chunk.Chunk,
		logging.Discard(),
	)

	return &App{
		Store:    &fakeStore{settings: settings},
		Records:  recordStore,
		Service:  service,
		checker:  diagnostics.NewChecker(),
		log:      logging.Discard(),
		settings: settings,
	}
}

func testAppSettings(t *testing.T) domain.Settings {
	return domain.Settings{
		Provider:           domain.ProviderOpenAI,
		OpenAIAPIKey:       "sk-test",
		TranscriptionModel: "whisper-1",
		SummaryModel:       "gpt-4o-mini",
		SummaryPrompt:      "summarize:{text}",
		ChunkPrompt:        "chunk:{text}",
		CombinePrompt:      "combine:{text}",
		TitlePrompt:        "title:{summary}",
		ChunkingEnabled:    true,
		ChunkSize:          4000,
		AutoSummarize:      true,
		RecordingsDir:      t.TempDir(),
	}
}

// waitRecord polls until the predicate holds for the record.
func waitRecord(t *testing.T, app *App, recordID string, pred func(domain.Record) bool) domain.Record {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		rec, err := app.Records.Get(recordID)
		if err != nil {
			t.Fatalf("get record: %v", err)
		}
		if pred(rec) {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("record did not reach expected state in time")
	return domain.Record{}
}

// TestImportRecordingRunsFullPipeline checks import triggers automatic
// transcription followed by summarization.
func TestImportRecordingRunsFullPipeline(t *testing.T) {
	app := newTestApp(testAppSettings(t))

	rec, err := app.ImportRecording("/audio/memo.m4a")
	if err != nil {
		t.Fatalf("ImportRecording() error = %v", err)
	}
	if rec.Name == "" || rec.ID == "" {
		t.Fatalf("imported record = %+v, want ID and name", rec)
	}

	final := waitRecord(t, app, rec.ID, func(r domain.Record) bool {
		return r.HasSummary
	})
	if final.Transcription != "transcript text" {
		t.Fatalf("transcription = %q", final.Transcription)
	}
	if final.Summary != "summary text" {
		t.Fatalf("summary = %q", final.Summary)
	}
}

// TestImportRecordingHonorsAutoSummarizeOff checks that disabling the
// auto-summarize setting stops the summarization chain after import.
func TestImportRecordingHonorsAutoSummarizeOff(t *testing.T) {
	settings := testAppSettings(t)
	settings.AutoSummarize = false
	app := newTestApp(settings)

	rec, err := app.ImportRecording("/audio/memo.m4a")
	if err != nil {
		t.Fatalf("ImportRecording() error = %v", err)
	}

	final := waitRecord(t, app, rec.ID, func(r domain.Record) bool {
		return r.HasTranscription
	})
	if final.Transcription != "transcript text" {
		t.Fatalf("transcription = %q", final.Transcription)
	}

	// Give a chained job time to run if one was wrongly enqueued.
	time.Sleep(50 * time.Millisecond)
	rec, err = app.Records.Get(rec.ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec.HasSummary {
		t.Fatalf("summary = %q, want none with auto-summarize disabled", rec.Summary)
	}
	if st := app.ProcessingState(rec.ID); st.IsSummarizing || st.PendingSummarizationCount != 0 {
		t.Fatalf("state = %+v, want no summarization activity", st)
	}
}

// TestImportRecordingRejectsEmptyPath checks input validation.
func TestImportRecordingRejectsEmptyPath(t *testing.T) {
	app := newTestApp(testAppSettings(t))
	if _, err := app.ImportRecording("   "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

// TestStartSummarizationUnknownRecord checks the not-found guard.
func TestStartSummarizationUnknownRecord(t *testing.T) {
	app := newTestApp(testAppSettings(t))
	err := app.StartSummarization("missing")
	if !domain.IsKind(err, domain.KindRecordNotFound) {
		t.Fatalf("error = %v, want record-not-found", err)
	}
}

// TestSaveSettingsRefreshesDiagnostics checks persistence plus checks.
func TestSaveSettingsRefreshesDiagnostics(t *testing.T) {
	app := newTestApp(testAppSettings(t))

	settings := testAppSettings(t)
	settings.OpenAIAPIKey = "  sk-new  "
	saved, err := app.SaveSettings(settings)
	if err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	if saved.OpenAIAPIKey != "sk-new" {
		t.Fatalf("saved key = %q, want trimmed", saved.OpenAIAPIKey)
	}

	report := app.GetDiagnostics()
	if report.HasFailures {
		t.Fatalf("diagnostics = %+v, want no failures", report.Items)
	}
	if len(report.Items) == 0 {
		t.Fatal("expected diagnostics to be refreshed on save")
	}
}

// TestProcessingStateStartsIdle checks the zero state for unknown records.
func TestProcessingStateStartsIdle(t *testing.T) {
	app := newTestApp(testAppSettings(t))
	st := app.ProcessingState("unknown")
	if st.IsTranscribing || st.IsSummarizing || st.PendingTranscriptionCount != 0 {
		t.Fatalf("state = %+v, want idle", st)
	}
}

// TestListRecordsReturnsImports checks listing.
func TestListRecordsReturnsImports(t *testing.T) {
	app := newTestApp(testAppSettings(t))

	first, _ := app.ImportRecording("/audio/a.m4a")
	second, _ := app.ImportRecording("/audio/b.m4a")

	list := app.ListRecords()
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	ids := strings.Join([]string{list[0].ID, list[1].ID}, ",")
	for _, id := range []string{first.ID, second.ID} {
		if !strings.Contains(ids, id) {
			t.Fatalf("record %s missing from list", id)
		}
	}
}
