package watch

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// settleDelay gives the writing process time to finish before import.
const settleDelay = 500 * time.Millisecond

var audioExtensions = map[string]bool{
	".m4a":  true,
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".aac":  true,
	".ogg":  true,
}

// ImportFunc registers a new recording and returns its record ID.
type ImportFunc func(path string) (string, error)

// EnqueueFunc schedules processing for an imported recording.
type EnqueueFunc func(recordID string)

// Watcher monitors a directory and imports audio files dropped into it.
type Watcher struct {
	dir     string
	importF ImportFunc
	enqueue EnqueueFunc
	log     *logrus.Logger
	settle  time.Duration
	fs      *fsnotify.Watcher
}

// New creates a Watcher for dir. The directory must already exist.
func New(dir string, importF ImportFunc, enqueue EnqueueFunc, log *logrus.Logger) (*Watcher, error) {
	return newWatcher(dir, importF, enqueue, log, settleDelay)
}

// NewForTests creates a Watcher with a custom settle delay.
func NewForTests(dir string, importF ImportFunc, enqueue EnqueueFunc, log *logrus.Logger, settle time.Duration) (*Watcher, error) {
	return newWatcher(dir, importF, enqueue, log, settle)
}

func newWatcher(dir string, importF ImportFunc, enqueue EnqueueFunc, log *logrus.Logger, settle time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, err
	}
	return &Watcher{
		dir:     dir,
		importF: importF,
		enqueue: enqueue,
		log:     log,
		settle:  settle,
		fs:      fs,
	}, nil
}

// Run processes filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.WithField("dir", w.dir).Info("watching import folder")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isAudioFile(event.Name) {
				w.log.WithField("path", event.Name).Debug("ignoring non-audio file")
				continue
			}
			select {
			case <-time.After(w.settle):
			case <-ctx.Done():
				return ctx.Err()
			}
			w.handle(event.Name)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.log.WithError(err).Error("watcher error")
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) handle(path string) {
	recordID, err := w.importF(path)
	if err != nil {
		w.log.WithError(err).WithField("path", path).Error("import failed")
		return
	}
	w.log.WithFields(logrus.Fields{"path": path, "record": recordID}).Info("imported recording")
	w.enqueue(recordID)
}

// isAudioFile reports whether the path carries a supported audio extension.
func isAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}
