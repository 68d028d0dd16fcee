package transcribe

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/pfrankov/vibe-scribe-sub000/internal/domain"
)

// doneToken terminates some event streams; it carries no text.
const doneToken = "[DONE]"

// streamEvent is the JSON shape of one event payload.
type streamEvent struct {
	Text    string `json:"text"`
	Partial *bool  `json:"partial"`
}

// streamingContext is per-request scratch state: the receive buffer holding
// bytes that do not yet form a complete event block, and the running
// transcript accumulator. One context exists per in-flight streaming task
// and is owned by the goroutine handling that request.
type streamingContext struct {
	buf       []byte
	fragments []string
}

// newStreamingContext creates empty scratch state for one streaming task.
func newStreamingContext() *streamingContext {
	return &streamingContext{}
}

// Feed appends received bytes and returns updates for every complete
// blank-line-delimited block now available. Trailing incomplete data stays
// buffered for the next call. CRLF line endings are normalized to LF; a
// trailing lone CR stays buffered until its LF arrives.
func (sc *streamingContext) Feed(p []byte) []domain.TranscriptionUpdate {
	sc.buf = append(sc.buf, p...)
	sc.buf = bytes.ReplaceAll(sc.buf, []byte("\r\n"), []byte("\n"))

	var updates []domain.TranscriptionUpdate
	for {
		idx := bytes.Index(sc.buf, []byte("\n\n"))
		if idx < 0 {
			break
		}
		block := string(sc.buf[:idx])
		sc.buf = sc.buf[idx+2:]
		updates = append(updates, sc.parseBlock(block)...)
	}
	return updates
}

// Flush parses whatever is left in the buffer after the connection closed.
func (sc *streamingContext) Flush() []domain.TranscriptionUpdate {
	if len(sc.buf) == 0 {
		return nil
	}
	block := string(sc.buf)
	sc.buf = nil
	return sc.parseBlock(block)
}

// Accumulated returns the space-joined transcript gathered so far.
func (sc *streamingContext) Accumulated() string {
	return strings.Join(sc.fragments, " ")
}

// parseBlock extracts data: events from one block and records their text.
func (sc *streamingContext) parseBlock(block string) []domain.TranscriptionUpdate {
	var updates []domain.TranscriptionUpdate
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == doneToken {
			continue
		}

		update := parseEventPayload(payload)
		sc.accumulate(update.Text)
		updates = append(updates, update)
	}
	return updates
}

// accumulate appends one fragment, skipping empties.
func (sc *streamingContext) accumulate(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	sc.fragments = append(sc.fragments, text)
}

// parseEventPayload decodes one event: a JSON object with a text field and
// an optional partial flag (default true), or a bare line of text treated
// as a partial fragment.
func parseEventPayload(payload string) domain.TranscriptionUpdate {
	if strings.HasPrefix(payload, "{") {
		var ev streamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err == nil {
			partial := true
			if ev.Partial != nil {
				partial = *ev.Partial
			}
			return domain.TranscriptionUpdate{
				Partial:   partial,
				Text:      ev.Text,
				Timestamp: time.Now().UTC(),
			}
		}
	}

	return domain.TranscriptionUpdate{
		Partial:   true,
		Text:      payload,
		Timestamp: time.Now().UTC(),
	}
}
