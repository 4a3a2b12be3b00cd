package player

import (
	"context"
	"errors"
	"sync"
)

// ErrSerialClosed is returned for calls made after the serial loop stopped.
var ErrSerialClosed = errors.New("player: serial controller closed")

// Serial wraps a Controller and marshals every call onto one dedicated
// goroutine, satisfying controllers that require a single execution context.
// Calls block until the wrapped call completes or the caller's context ends;
// in the latter case the call still runs to completion on the loop.
type Serial struct {
	inner Controller

	calls     chan func()
	closeOnce sync.Once
	closed    chan struct{}
}

// NewSerial starts the execution loop around inner.
func NewSerial(inner Controller) *Serial {
	s := &Serial{
		inner:  inner,
		calls:  make(chan func()),
		closed: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Serial) loop() {
	for {
		select {
		case fn := <-s.calls:
			fn()
		case <-s.closed:
			return
		}
	}
}

// Close stops the execution loop. Pending callers receive ErrSerialClosed.
func (s *Serial) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *Serial) do(ctx context.Context, call func(context.Context) error) error {
	errc := make(chan error, 1)
	select {
	case s.calls <- func() { errc <- call(ctx) }:
	case <-s.closed:
		return ErrSerialClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Serial) Play(ctx context.Context) error {
	return s.do(ctx, s.inner.Play)
}

func (s *Serial) Pause(ctx context.Context) error {
	return s.do(ctx, s.inner.Pause)
}

func (s *Serial) Next(ctx context.Context) error {
	return s.do(ctx, s.inner.Next)
}

func (s *Serial) Previous(ctx context.Context) error {
	return s.do(ctx, s.inner.Previous)
}

func (s *Serial) CycleRepeatMode(ctx context.Context) error {
	return s.do(ctx, s.inner.CycleRepeatMode)
}

func (s *Serial) CurrentTrack(ctx context.Context) (*Track, error) {
	var track *Track
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		track, err = s.inner.CurrentTrack(ctx)
		return err
	})
	return track, err
}

func (s *Serial) Initialize(ctx context.Context) error {
	return s.do(ctx, s.inner.Initialize)
}

func (s *Serial) SetPlaylist(ctx context.Context, tracks []Track, startIndex int) error {
	return s.do(ctx, func(ctx context.Context) error {
		return s.inner.SetPlaylist(ctx, tracks, startIndex)
	})
}

func (s *Serial) LoadTrack(ctx context.Context, t Track) (bool, error) {
	var loaded bool
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		loaded, err = s.inner.LoadTrack(ctx, t)
		return err
	})
	return loaded, err
}

func (s *Serial) Enqueue(ctx context.Context, t Track) error {
	return s.do(ctx, func(ctx context.Context) error {
		return s.inner.Enqueue(ctx, t)
	})
}
