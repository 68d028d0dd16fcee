package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pfrankov/vibe-scribe-sub000/internal/domain"
)

const (
	transcriptionPath = "/audio/transcriptions"
	uploadFileName    = "audio.m4a"
	uploadMIMEType    = "audio/m4a"

	// maxStreamRetries bounds transport-failure retries for the real-time
	// API only; the single-result path has a cheaper regular-request
	// fallback and fails fast instead.
	maxStreamRetries = 3

	readBufferSize = 4096
)

// UpdateFunc receives every transcription fragment as it arrives.
type UpdateFunc = func(domain.TranscriptionUpdate)

// Client talks to a Whisper-compatible transcription endpoint, streaming
// first with graceful degradation to a regular request.
type Client struct {
	// No client-side timeout: uploads and long transcriptions are expected
	// to outlive any reasonable fixed deadline. Cancellation is the
	// caller's context.
	httpClient *http.Client
	support    *supportCache
	backoff    func(attempt int) time.Duration
	log        *logrus.Logger
}

// NewClient creates a protocol client with production transport settings.
func NewClient(log *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		support:    newSupportCache(),
		backoff:    linearBackoff,
		log:        log,
	}
}

// NewClientForTests creates a client with injectable transport and backoff.
func NewClientForTests(httpClient *http.Client, backoff func(int) time.Duration, log *logrus.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		support:    newSupportCache(),
		backoff:    backoff,
		log:        log,
	}
}

// linearBackoff returns 2s, 4s, 6s for attempts 1-3.
func linearBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 2 * time.Second
}

// Transcribe returns the full transcript for an audio file. It attempts a
// streaming request first unless the server is already known not to support
// streaming, falls back to a regular request on the not-supported signal,
// and propagates any other failure. When onUpdate is non-nil it receives
// every fragment of the streaming attempt as it arrives.
func (c *Client) Transcribe(ctx context.Context, audioPath string, cfg domain.TranscriptionConfig, onUpdate UpdateFunc) (string, error) {
	supported, known := c.support.Lookup(cfg.BaseURL)
	if !known || supported {
		text, err := c.streamOnce(ctx, audioPath, cfg, onUpdate)
		if err == nil {
			c.support.Set(cfg.BaseURL, true)
			return text, nil
		}
		if !domain.IsKind(err, domain.KindStreamingNotSupported) {
			return "", err
		}
		c.log.WithField("server", cfg.BaseURL).Info("server ignores streaming, falling back to regular request")
		c.support.Set(cfg.BaseURL, false)
	}

	return c.TranscribeRequest(ctx, audioPath, cfg)
}

// TranscribeRequest performs a single non-streaming transcription request
// and returns the response body as text.
func (c *Client) TranscribeRequest(ctx context.Context, audioPath string, cfg domain.TranscriptionConfig) (string, error) {
	req, err := c.newUploadRequest(ctx, audioPath, cfg, false)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.WrapError(domain.KindNetwork, "transcription request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.WrapError(domain.KindNetwork, "reading transcription response failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.NewHTTPError(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return string(body), nil
}

// TranscribeRealTime streams the transcription and reports every received
// fragment through onUpdate. Transport failures are retried up to
// maxStreamRetries times with linear backoff; each retry restarts the
// upload from scratch. Cancelling ctx stops the network task and any
// pending retry.
func (c *Client) TranscribeRealTime(ctx context.Context, audioPath string, cfg domain.TranscriptionConfig, onUpdate UpdateFunc) error {
	var lastErr error
	for attempt := 0; attempt <= maxStreamRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.log.WithFields(logrus.Fields{
				"attempt": attempt,
				"delay":   delay,
			}).Warn("streaming transcription failed, retrying")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		_, err := c.streamOnce(ctx, audioPath, cfg, onUpdate)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !domain.IsKind(err, domain.KindNetwork) {
			return err
		}
		lastErr = err
	}

	return lastErr
}

// streamOnce performs one streaming attempt with a fresh per-task context,
// emitting each parsed update and returning the accumulated transcript.
// A connection that closes without ever producing text reports the
// streaming-not-supported signal.
func (c *Client) streamOnce(ctx context.Context, audioPath string, cfg domain.TranscriptionConfig, onUpdate UpdateFunc) (string, error) {
	req, err := c.newUploadRequest(ctx, audioPath, cfg, true)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.WrapError(domain.KindNetwork, "streaming request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", domain.NewHTTPError(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	sc := newStreamingContext()
	buf := make([]byte, readBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			emitAll(onUpdate, sc.Feed(buf[:n]))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", domain.WrapError(domain.KindNetwork, "connection lost mid-stream", readErr)
		}
	}

	emitAll(onUpdate, sc.Flush())

	text := sc.Accumulated()
	if text == "" {
		return "", domain.NewError(domain.KindStreamingNotSupported, "server accepted the stream parameter but sent no events")
	}

	if onUpdate != nil {
		onUpdate(domain.TranscriptionUpdate{
			Partial:   false,
			Text:      text,
			Timestamp: time.Now().UTC(),
		})
	}
	return text, nil
}

// emitAll forwards parsed updates when a consumer is attached.
func emitAll(onUpdate UpdateFunc, updates []domain.TranscriptionUpdate) {
	if onUpdate == nil {
		return
	}
	for _, u := range updates {
		onUpdate(u)
	}
}

// newUploadRequest builds the multipart transcription request.
func (c *Client) newUploadRequest(ctx context.Context, audioPath string, cfg domain.TranscriptionConfig, streaming bool) (*http.Request, error) {
	endpoint := strings.TrimRight(cfg.BaseURL, "/") + transcriptionPath
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, domain.WrapError(domain.KindInvalidURL, "invalid transcription endpoint: "+endpoint, err)
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidAudioFile, "cannot read audio file: "+audioPath, err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("model", cfg.Model)
	if streaming {
		_ = writer.WriteField("response_format", "text")
		_ = writer.WriteField("stream", "true")
	} else {
		_ = writer.WriteField("response_format", "srt")
	}

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, uploadFileName))
	partHeader.Set("Content-Type", uploadMIMEType)
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidAudioFile, "building upload body failed", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, domain.WrapError(domain.KindInvalidAudioFile, "building upload body failed", err)
	}
	if err := writer.Close(); err != nil {
		return nil, domain.WrapError(domain.KindInvalidAudioFile, "building upload body failed", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidURL, "building request failed", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	if streaming {
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Connection", "keep-alive")
	}
	if key := sanitizeAPIKey(cfg.APIKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	return req, nil
}

// sanitizeAPIKey strips control characters so a malformed key cannot
// inject headers.
func sanitizeAPIKey(key string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(key))
}
