package store

import (
	"context"
	"sync"

	"github.com/arnold/goalforge-api/internal/models"
)

// Stream delivers collection snapshots. A slow reader only ever sees the
// latest snapshot; intermediate ones are dropped.
type Stream struct {
	mu      sync.Mutex
	updates chan []models.Record
	done    chan struct{}
	closed  bool
	err     error
	onStop  func()
	once    sync.Once
}

func newStream(onStop func()) *Stream {
	return &Stream{
		updates: make(chan []models.Record, 1),
		done:    make(chan struct{}),
		onStop:  onStop,
	}
}

// Next blocks until a snapshot is available, the stream ends or ctx is done.
func (s *Stream) Next(ctx context.Context) ([]models.Record, error) {
	select {
	case snap, ok := <-s.updates:
		if !ok {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.err != nil {
				return nil, s.err
			}
			return nil, ErrStreamClosed
		}
		return snap, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop ends the stream and releases the subscription. Safe to call twice.
func (s *Stream) Stop() {
	s.once.Do(func() {
		if s.onStop != nil {
			s.onStop()
		}
		s.close(nil)
	})
}

func (s *Stream) push(snap []models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.updates:
	default:
	}
	s.updates <- snap
}

func (s *Stream) close(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.updates)
	close(s.done)
}

// Done is closed once the stream has ended.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// stopWith ends the stream when ctx is cancelled.
func (s *Stream) stopWith(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.done:
		}
	}()
}
