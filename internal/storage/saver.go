package storage

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sprite-ai/vouch/internal/model"
)

// Persister is the slice of Store the Saver needs.
type Persister interface {
	Save(repoPath string, state *model.ReviewState) error
}

// Saver debounces review writes: mutations call Mark, a timer batches
// them into one Save. Write failures are logged and recoverable;
// in-memory state is never rolled back.
type Saver struct {
	store    Persister
	repoPath string
	delay    time.Duration
	snapshot func() *model.ReviewState
	log      zerolog.Logger

	mu     sync.Mutex
	timer  *time.Timer
	dirty  bool
	closed bool
}

// NewSaver creates a debounced writer. snapshot must return a
// self-contained copy of the current state.
func NewSaver(store Persister, repoPath string, delay time.Duration, snapshot func() *model.ReviewState, log zerolog.Logger) *Saver {
	return &Saver{
		store:    store,
		repoPath: repoPath,
		delay:    delay,
		snapshot: snapshot,
		log:      log,
	}
}

// Mark records that the state changed and (re)starts the debounce
// timer.
func (s *Saver) Mark() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.dirty = true
	if s.timer != nil {
		s.timer.Reset(s.delay)
		return
	}
	s.timer = time.AfterFunc(s.delay, s.flush)
}

func (s *Saver) flush() {
	s.mu.Lock()
	s.timer = nil
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	if err := s.save(); err != nil {
		s.log.Warn().Err(err).Str("repo", s.repoPath).Msg("review save failed")
	}
}

// save writes a snapshot if anything changed since the last write.
// Saving an unchanged state would carry the version already on disk
// and fail the conflict check.
func (s *Saver) save() error {
	s.mu.Lock()
	dirty := s.dirty
	s.dirty = false
	s.mu.Unlock()
	if !dirty {
		return nil
	}
	state := s.snapshot()
	if state == nil {
		return nil
	}
	err := s.store.Save(s.repoPath, state)
	if err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
	}
	return err
}

// Flush cancels any pending timer and writes immediately.
func (s *Saver) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.save()
}

// Close stops the saver and performs a final write.
func (s *Saver) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.save()
}
