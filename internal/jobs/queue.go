package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pfrankov/vibe-scribe-sub000/internal/domain"
)

// RecordStore is the persistence collaborator for recording artifacts.
type RecordStore interface {
	Get(id string) (domain.Record, error)
	AudioPath(id string) (string, error)
	SaveTranscript(id, text string) error
	SaveSummary(id, text string) error
	SaveTitle(id, name string) error
}

// Transcriber is the streaming transcription protocol client.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, cfg domain.TranscriptionConfig, onUpdate func(domain.TranscriptionUpdate)) (string, error)
	TranscribeRequest(ctx context.Context, audioPath string, cfg domain.TranscriptionConfig) (string, error)
}

// LocalTranscriber is the optional fully on-device engine.
type LocalTranscriber interface {
	Transcribe(ctx context.Context, audioPath string, snap domain.SettingsSnapshot) (string, error)
}

// Completer is the chat-completion client used for summarization.
type Completer interface {
	Complete(ctx context.Context, cfg domain.ChatConfig, prompt string) (string, error)
}

// Chunker splits long text into bounded-size pieces.
type Chunker func(text string, maxSize int) []string

// NotifyFunc receives a state snapshot after every observable change.
type NotifyFunc func(recordID string, state State)

// Service owns the global FIFO job queue and per-recording processing
// state. At most one job executes at any time system-wide; jobs are
// expected to be infrequent and user-driven, not a bulk pipeline.
type Service struct {
	records RecordStore
	client  Transcriber
	local   LocalTranscriber
	chat    Completer
	chunk   Chunker
	log     *logrus.Logger

	mu      sync.Mutex
	queue   []Job
	running bool
	states  map[string]*State
	notify  NotifyFunc
}

// NewService creates an idle orchestrator. local may be nil when no
// on-device engine is available.
func NewService(records RecordStore, client Transcriber, local LocalTranscriber, chat Completer, chunk Chunker, log *logrus.Logger) *Service {
	return &Service{
		records: records,
		client:  client,
		local:   local,
		chat:    chat,
		chunk:   chunk,
		log:     log,
		states:  make(map[string]*State),
	}
}

// Notify registers the observer callback for state snapshots.
func (s *Service) Notify(fn NotifyFunc) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// EnqueueTranscription appends a transcription job for the recording.
// Fire-and-forget: progress and outcome are observed through State.
func (s *Service) EnqueueTranscription(recordID string, settings domain.Settings, automatic, preferStreaming bool) {
	job := Job{
		ID:              uuid.NewString(),
		RecordID:        recordID,
		Op:              OpTranscription,
		PreferStreaming: preferStreaming,
		Automatic:       automatic,
		Settings:        domain.Snapshot(settings),
	}
	s.enqueue(job)
}

// EnqueueSummarization appends a summarization job for the recording.
func (s *Service) EnqueueSummarization(recordID string, settings domain.Settings, automatic bool) {
	job := Job{
		ID:        uuid.NewString(),
		RecordID:  recordID,
		Op:        OpSummarization,
		Automatic: automatic,
		Settings:  domain.Snapshot(settings),
	}
	s.enqueue(job)
}

// State returns a snapshot of the recording's processing state.
func (s *Service) State(recordID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(recordID).clone()
}

// enqueue appends the job, bumps the pending counter, and advances.
func (s *Service) enqueue(job Job) {
	s.mu.Lock()
	st := s.stateLocked(job.RecordID)
	switch job.Op {
	case OpTranscription:
		st.PendingTranscriptionCount++
	case OpSummarization:
		st.PendingSummarizationCount++
	}
	s.queue = append(s.queue, job)
	s.advanceLocked()
	snap := st.clone()
	notify := s.notify
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"job":    job.ID,
		"record": job.RecordID,
		"op":     job.Op,
	}).Info("job enqueued")
	if notify != nil {
		notify(job.RecordID, snap)
	}
}

// enqueueFromJob re-enqueues follow-up work reusing a finished job's
// settings snapshot.
func (s *Service) enqueueFromJob(parent Job, op OpKind) {
	s.enqueue(Job{
		ID:        uuid.NewString(),
		RecordID:  parent.RecordID,
		Op:        op,
		Automatic: true,
		Settings:  parent.Settings,
	})
}

// advanceLocked starts the next job when the worker is idle. The dequeued
// job's pending counter is decremented and its in-progress flag set before
// execution begins.
func (s *Service) advanceLocked() {
	if s.running || len(s.queue) == 0 {
		return
	}

	job := s.queue[0]
	s.queue = s.queue[1:]
	s.running = true

	st := s.stateLocked(job.RecordID)
	switch job.Op {
	case OpTranscription:
		st.PendingTranscriptionCount--
		st.IsTranscribing = true
		st.TranscriptionError = ""
		st.IsStreaming = false
		st.StreamingChunks = nil
	case OpSummarization:
		st.PendingSummarizationCount--
		st.IsSummarizing = true
		st.SummaryError = ""
	}

	go s.run(job)
}

// run executes one job to completion and advances the queue regardless of
// the outcome. Errors never cross job boundaries; they land in the
// recording's state as human-readable messages.
func (s *Service) run(job Job) {
	ctx := context.Background()

	var err error
	switch job.Op {
	case OpTranscription:
		err = s.runTranscription(ctx, job)
	case OpSummarization:
		err = s.runSummarization(ctx, job)
	default:
		err = fmt.Errorf("unknown job operation: %s", job.Op)
	}

	entry := s.log.WithFields(logrus.Fields{
		"job":    job.ID,
		"record": job.RecordID,
		"op":     job.Op,
	})
	if err != nil {
		entry.WithError(err).Warn("job finished with error")
	} else {
		entry.Info("job finished")
	}

	s.mu.Lock()
	st := s.stateLocked(job.RecordID)
	switch job.Op {
	case OpTranscription:
		st.IsTranscribing = false
		st.IsStreaming = false
		st.StreamingChunks = nil
		if err != nil {
			st.TranscriptionError = err.Error()
		}
	case OpSummarization:
		st.IsSummarizing = false
		if err != nil {
			st.SummaryError = err.Error()
		}
	}
	s.running = false
	s.advanceLocked()
	snap := st.clone()
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(job.RecordID, snap)
	}
}

// mutateState applies a change under lock and notifies observers.
func (s *Service) mutateState(recordID string, fn func(*State)) {
	s.mu.Lock()
	st := s.stateLocked(recordID)
	fn(st)
	snap := st.clone()
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(recordID, snap)
	}
}

// stateLocked returns the recording's state, creating it on first access.
func (s *Service) stateLocked(recordID string) *State {
	st, ok := s.states[recordID]
	if !ok {
		st = &State{}
		s.states[recordID] = st
	}
	return st
}
