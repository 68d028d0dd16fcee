package jobs

import (
	"context"
	"strings"

	"github.com/pfrankov/vibe-scribe-sub000/internal/domain"
	"github.com/pfrankov/vibe-scribe-sub000/internal/subtitle"
)

// runSummarization summarizes the recording's transcript, chunking long
// text, and optionally derives a display title from the final summary.
func (s *Service) runSummarization(ctx context.Context, job Job) error {
	rec, err := s.records.Get(job.RecordID)
	if err != nil {
		return err
	}

	text := strings.TrimSpace(rec.Transcription)
	if text == "" {
		return domain.NewError(domain.KindEmptyCleanText, "nothing to summarize: transcript is empty")
	}
	if subtitle.Looks(text) {
		text = strings.TrimSpace(subtitle.PlainText(text))
		if text == "" {
			return domain.NewError(domain.KindEmptyCleanText, "transcript contains no speech text after removing subtitle markup")
		}
	}

	snap := job.Settings
	cfg := snap.ChatConfig()

	summary, err := s.summarizeText(ctx, snap, cfg, text)
	if err != nil {
		return err
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return domain.NewError(domain.KindSummaryEmpty, "model returned an empty summary")
	}
	if err := s.records.SaveSummary(job.RecordID, summary); err != nil {
		return err
	}

	if snap.AutoTitle {
		s.generateTitle(ctx, job, rec, cfg, summary)
	}
	return nil
}

// summarizeText produces a summary, mapping each chunk and combining the
// partial summaries when there is more than one. A failing chunk aborts
// the whole summarization; partial results are never persisted.
func (s *Service) summarizeText(ctx context.Context, snap domain.SettingsSnapshot, cfg domain.ChatConfig, text string) (string, error) {
	if !snap.ChunkingEnabled {
		return s.chat.Complete(ctx, cfg, renderPrompt(snap.SummaryPrompt, "{text}", text))
	}

	chunks := s.chunk(text, snap.ChunkSize)
	if len(chunks) == 0 {
		return "", domain.NewError(domain.KindEmptyCleanText, "nothing to summarize: transcript is empty")
	}

	partials := make([]string, 0, len(chunks))
	for i, piece := range chunks {
		part, err := s.chat.Complete(ctx, cfg, renderPrompt(snap.ChunkPrompt, "{text}", piece))
		if err != nil {
			return "", domain.NewChunkError(i, err)
		}
		partials = append(partials, strings.TrimSpace(part))
	}

	if len(partials) == 1 {
		return partials[0], nil
	}

	combined := strings.Join(partials, "\n\n")
	return s.chat.Complete(ctx, cfg, renderPrompt(snap.CombinePrompt, "{text}", combined))
}

// generateTitle derives a short display name from the summary. Failures
// are logged and swallowed: they never fail the summarization job.
func (s *Service) generateTitle(ctx context.Context, job Job, rec domain.Record, cfg domain.ChatConfig, summary string) {
	reply, err := s.chat.Complete(ctx, cfg, renderPrompt(job.Settings.TitlePrompt, "{summary}", summary))
	if err != nil {
		s.log.WithError(err).WithField("record", job.RecordID).Warn("title generation failed")
		return
	}

	title := SanitizeTitle(reply)
	if title == "" || title == rec.Name {
		return
	}
	if err := s.records.SaveTitle(job.RecordID, title); err != nil {
		s.log.WithError(err).WithField("record", job.RecordID).Warn("saving generated title failed")
	}
}

// renderPrompt substitutes the template placeholder with the given value.
// ReplaceAll keeps user templates containing % verbs safe.
func renderPrompt(template, placeholder, value string) string {
	return strings.ReplaceAll(template, placeholder, value)
}
