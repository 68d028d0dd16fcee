package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pfrankov/vibe-scribe-sub000/internal/logging"
)

func TestWatcherImportsAudioFiles(t *testing.T) {
	dir := t.TempDir()
	imported := make(chan string, 4)
	enqueued := make(chan string, 4)

	w, err := NewForTests(dir,
		func(path string) (string, error) {
			imported <- path
			return "rec-1", nil
		},
		func(recordID string) { enqueued <- recordID },
		logging.Discard(), time.Millisecond)
	if err != nil {
		t.Fatalf("NewForTests() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	audio := filepath.Join(dir, "memo.m4a")
	if err := os.WriteFile(audio, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-imported:
		if got != audio {
			t.Fatalf("imported path = %q, want %q", got, audio)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("audio file was not imported")
	}
	select {
	case got := <-enqueued:
		if got != "rec-1" {
			t.Fatalf("enqueued record = %q, want rec-1", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("imported recording was not enqueued")
	}
}

func TestWatcherIgnoresNonAudioFiles(t *testing.T) {
	dir := t.TempDir()
	imported := make(chan string, 4)

	w, err := NewForTests(dir,
		func(path string) (string, error) {
			imported <- path
			return "rec-1", nil
		},
		func(string) {},
		logging.Discard(), time.Millisecond)
	if err != nil {
		t.Fatalf("NewForTests() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-imported:
		t.Fatalf("unexpected import of %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestIsAudioFile(t *testing.T) {
	cases := map[string]bool{
		"a.m4a":      true,
		"a.MP3":      true,
		"a.wav":      true,
		"a.flac":     true,
		"a.txt":      false,
		"a.m4a.part": false,
		"no-ext":     false,
		"dir/b.ogg":  true,
		"c.aac":      true,
	}
	for path, want := range cases {
		if got := isAudioFile(path); got != want {
			t.Fatalf("isAudioFile(%q) = %v, want %v", path, got, want)
		}
	}
}
