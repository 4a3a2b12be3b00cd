package player_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/josemri/plyr-voice/internal/player"
)

// countingController verifies calls never overlap and records their order.
type countingController struct {
	mu       sync.Mutex
	inFlight int
	overlap  bool
	order    []string
	delay    time.Duration
}

func (c *countingController) enter(name string) {
	c.mu.Lock()
	c.inFlight++
	if c.inFlight > 1 {
		c.overlap = true
	}
	c.order = append(c.order, name)
	c.mu.Unlock()
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
}

func (c *countingController) exit() {
	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
}

func (c *countingController) run(name string) error {
	c.enter(name)
	defer c.exit()
	return nil
}

func (c *countingController) Play(context.Context) error            { return c.run("play") }
func (c *countingController) Pause(context.Context) error           { return c.run("pause") }
func (c *countingController) Next(context.Context) error            { return c.run("next") }
func (c *countingController) Previous(context.Context) error        { return c.run("previous") }
func (c *countingController) CycleRepeatMode(context.Context) error { return c.run("repeat") }
func (c *countingController) Initialize(context.Context) error      { return c.run("init") }

func (c *countingController) CurrentTrack(context.Context) (*player.Track, error) {
	c.enter("current")
	defer c.exit()
	return &player.Track{Name: "Yesterday"}, nil
}

func (c *countingController) SetPlaylist(context.Context, []player.Track, int) error {
	return c.run("set_playlist")
}

func (c *countingController) LoadTrack(context.Context, player.Track) (bool, error) {
	c.enter("load")
	defer c.exit()
	return true, nil
}

func (c *countingController) Enqueue(context.Context, player.Track) error {
	return c.run("enqueue")
}

func TestSerial_NoOverlappingCalls(t *testing.T) {
	t.Parallel()

	inner := &countingController{delay: 2 * time.Millisecond}
	serial := player.NewSerial(inner)
	defer serial.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			switch i % 4 {
			case 0:
				err = serial.Play(ctx)
			case 1:
				err = serial.Pause(ctx)
			case 2:
				_, err = serial.CurrentTrack(ctx)
			case 3:
				err = serial.Enqueue(ctx, player.Track{Name: "x"})
			}
			if err != nil {
				t.Errorf("call error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	inner.mu.Lock()
	defer inner.mu.Unlock()
	if inner.overlap {
		t.Error("inner controller saw overlapping calls")
	}
	if len(inner.order) != 16 {
		t.Errorf("inner saw %d calls, want 16", len(inner.order))
	}
}

func TestSerial_ReturnValuesPassThrough(t *testing.T) {
	t.Parallel()

	serial := player.NewSerial(&countingController{})
	defer serial.Close()

	track, err := serial.CurrentTrack(context.Background())
	if err != nil {
		t.Fatalf("CurrentTrack() error = %v", err)
	}
	if track == nil || track.Name != "Yesterday" {
		t.Errorf("track = %+v", track)
	}

	loaded, err := serial.LoadTrack(context.Background(), player.Track{})
	if err != nil || !loaded {
		t.Errorf("LoadTrack() = %v, %v", loaded, err)
	}
}

func TestSerial_ClosedReturnsError(t *testing.T) {
	t.Parallel()

	serial := player.NewSerial(&countingController{})
	serial.Close()

	if err := serial.Play(context.Background()); !errors.Is(err, player.ErrSerialClosed) {
		t.Errorf("Play() after Close error = %v, want ErrSerialClosed", err)
	}
}

func TestSerial_CancelledCallerDoesNotBlock(t *testing.T) {
	t.Parallel()

	inner := &countingController{delay: 200 * time.Millisecond}
	serial := player.NewSerial(inner)
	defer serial.Close()

	// Occupy the execution loop so the next call has to wait its turn.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = serial.Play(context.Background())
	}()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The cancelled caller gets its context error instead of queueing.
	if err := serial.Pause(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Pause() error = %v, want context.Canceled", err)
	}
	wg.Wait()
}
