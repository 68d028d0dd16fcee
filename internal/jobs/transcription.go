package jobs

import (
	"context"
	"errors"
	"strings"

	"github.com/pfrankov/vibe-scribe-sub000/internal/domain"
)

// EmptyTranscriptionMessage is surfaced when a recording produces no text.
// An empty transcript is valid information (a silent recording), not a
// failure: the record is still marked as transcribed.
const EmptyTranscriptionMessage = "Transcription completed, but no speech was detected in the recording"

// runTranscription resolves the audio file, obtains a transcript, persists
// it, and chains automatic summarization for non-empty results.
func (s *Service) runTranscription(ctx context.Context, job Job) error {
	audioPath, err := s.records.AudioPath(job.RecordID)
	if err != nil {
		return err
	}

	text, err := s.transcribeAudio(ctx, job, audioPath)
	if err != nil {
		return err
	}

	text = strings.TrimSpace(text)
	if err := s.records.SaveTranscript(job.RecordID, text); err != nil {
		return err
	}
	if text == "" {
		return errors.New(EmptyTranscriptionMessage)
	}

	if job.Automatic {
		s.enqueueFromJob(job, OpSummarization)
	}
	return nil
}

// transcribeAudio picks the transcription path: on-device engine first when
// configured (any engine failure falls back to the network rather than
// failing the job), then streaming or regular network transcription.
func (s *Service) transcribeAudio(ctx context.Context, job Job, audioPath string) (string, error) {
	snap := job.Settings

	if snap.Provider == domain.ProviderLocal && s.local != nil {
		text, err := s.local.Transcribe(ctx, audioPath, snap)
		if err == nil {
			return text, nil
		}
		s.log.WithError(err).WithField("record", job.RecordID).
			Warn("on-device engine failed, falling back to network transcription")
	}

	cfg := snap.TranscriptionConfig()
	if job.PreferStreaming && snap.Provider != domain.ProviderLocal {
		return s.client.Transcribe(ctx, audioPath, cfg, func(u domain.TranscriptionUpdate) {
			s.recordStreamingUpdate(job.RecordID, u)
		})
	}

	return s.client.TranscribeRequest(ctx, audioPath, cfg)
}

// recordStreamingUpdate feeds a live fragment into the recording's state.
func (s *Service) recordStreamingUpdate(recordID string, u domain.TranscriptionUpdate) {
	s.mutateState(recordID, func(st *State) {
		st.IsStreaming = true
		if u.Partial {
			st.pushChunk(strings.TrimSpace(u.Text))
		}
	})
}
