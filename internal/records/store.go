package records

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pfrankov/vibe-scribe-sub000/internal/domain"
)

// Store keeps recordings for the lifetime of the app session.
type Store struct {
	mu      sync.RWMutex
	records map[string]*domain.Record
	stat    func(string) (os.FileInfo, error)
}

// NewStore creates an empty in-memory record store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]*domain.Record),
		stat:    os.Stat,
	}
}

// NewStoreForTests creates a store with an injectable file stat.
func NewStoreForTests(stat func(string) (os.FileInfo, error)) *Store {
	return &Store{
		records: make(map[string]*domain.Record),
		stat:    stat,
	}
}

// Import registers an audio file as a new record and returns a copy.
func (s *Store) Import(audioPath string) domain.Record {
	name := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	rec := &domain.Record{
		ID:        uuid.NewString(),
		Name:      name,
		AudioPath: audioPath,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()
	return *rec
}

// Get returns a copy of the record or a record-not-found error.
func (s *Store) Get(id string) (domain.Record, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Record{}, domain.NewError(domain.KindRecordNotFound, "record not found: "+id)
	}
	return *rec, nil
}

// List returns copies of all records ordered by creation time.
func (s *Store) List() []domain.Record {
	s.mu.RLock()
	out := make([]domain.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// AudioPath resolves the readable audio file for a record.
func (s *Store) AudioPath(id string) (string, error) {
	rec, err := s.Get(id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(rec.AudioPath) == "" {
		return "", domain.NewError(domain.KindMissingAudioFile, "record has no audio file: "+id)
	}
	if _, err := s.stat(rec.AudioPath); err != nil {
		return "", domain.WrapError(domain.KindMissingAudioFile, "audio file is missing: "+rec.AudioPath, err)
	}
	return rec.AudioPath, nil
}

// SaveTranscript stores the transcript text and marks the record transcribed.
func (s *Store) SaveTranscript(id, text string) error {
	return s.update(id, func(rec *domain.Record) {
		rec.Transcription = text
		rec.HasTranscription = true
	})
}

// SaveSummary stores the summary text and marks the record summarized.
func (s *Store) SaveSummary(id, text string) error {
	return s.update(id, func(rec *domain.Record) {
		rec.Summary = text
		rec.HasSummary = true
	})
}

// SaveTitle updates the record display name.
func (s *Store) SaveTitle(id, name string) error {
	return s.update(id, func(rec *domain.Record) {
		rec.Name = name
	})
}

// update applies a mutation under lock or reports record-not-found.
func (s *Store) update(id string, fn func(*domain.Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return domain.NewError(domain.KindRecordNotFound, "record not found: "+id)
	}
	fn(rec)
	return nil
}
