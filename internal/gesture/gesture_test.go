package gesture

import (
	"testing"
	"time"
)

// testMachine returns a machine whose hold timer never fires on its own; the
// returned trigger invokes the pending hold callback, if any.
func testMachine(cfg Config) (*Machine, func()) {
	m := NewMachine(cfg)
	var pending func()
	m.afterFunc = func(_ time.Duration, fn func()) *time.Timer {
		pending = fn
		t := time.NewTimer(time.Hour)
		t.Stop()
		return t
	}
	trigger := func() {
		if pending != nil {
			pending()
		}
	}
	return m, trigger
}

func drainEvent(t *testing.T, m *Machine) (Event, bool) {
	t.Helper()
	select {
	case ev := <-m.Events():
		return ev, true
	default:
		return "", false
	}
}

func expectEvent(t *testing.T, m *Machine, want Event) {
	t.Helper()
	ev, ok := drainEvent(t, m)
	if !ok {
		t.Fatalf("expected event %q, got none", want)
	}
	if ev != want {
		t.Fatalf("event = %q, want %q", ev, want)
	}
}

func expectNoEvent(t *testing.T, m *Machine) {
	t.Helper()
	if ev, ok := drainEvent(t, m); ok {
		t.Fatalf("unexpected event %q", ev)
	}
}

func TestQuickRelease_FiresStartListeningOnce(t *testing.T) {
	m, trigger := testMachine(Config{})

	m.Start(10, 10)
	m.Move(400) // well past the threshold after damping
	if m.State() != StatePulling {
		t.Fatalf("state = %q, want pulling", m.State())
	}

	m.Release()
	expectEvent(t, m, EventStartListening)
	expectNoEvent(t, m)

	if m.State() != StateIdle {
		t.Errorf("state after release = %q, want idle", m.State())
	}
	if m.Pull() != 0 {
		t.Errorf("pull after release = %v, want 0", m.Pull())
	}

	// The stopped hold timer must not fire a second outcome.
	trigger()
	expectNoEvent(t, m)
}

func TestRelease_BelowThreshold_NoEvent(t *testing.T) {
	m, _ := testMachine(Config{})

	m.Start(0, 0)
	m.Move(50) // 50 * 0.8 = 40, below the 120 threshold
	m.Release()

	expectNoEvent(t, m)
	if m.State() != StateIdle {
		t.Errorf("state = %q, want idle", m.State())
	}
}

func TestHold_FiresOpenConversation(t *testing.T) {
	m, trigger := testMachine(Config{})

	m.Start(0, 0)
	m.Move(400)
	trigger()

	expectEvent(t, m, EventOpenConversation)
	if m.State() != StateIdle {
		t.Errorf("state after hold = %q, want idle", m.State())
	}

	// The release that follows the hold must not add a second outcome.
	m.Release()
	expectNoEvent(t, m)
}

func TestCancel_SuppressesBothOutcomes(t *testing.T) {
	m, trigger := testMachine(Config{})

	m.Start(0, 0)
	m.Move(400)
	m.Cancel()

	trigger()
	m.Release()
	expectNoEvent(t, m)
	if m.State() != StateIdle {
		t.Errorf("state = %q, want idle", m.State())
	}
}

func TestDisarm_DroppingBelowThresholdBeforeRelease(t *testing.T) {
	m, trigger := testMachine(Config{})

	m.Start(0, 0)
	m.Move(200) // 200 * 0.8 = 160, armed
	m.Move(-400)
	if m.Pull() >= m.cfg.ActivationThreshold {
		t.Fatalf("pull = %v, expected to drop below threshold", m.Pull())
	}

	m.Release()
	trigger()
	expectNoEvent(t, m)
}

func TestMove_DampingAndClamp(t *testing.T) {
	m, _ := testMachine(Config{})

	m.Start(0, 0)
	m.Move(100)
	if got := m.Pull(); got != 80 { // 100 * 0.8 at zero displacement
		t.Errorf("pull = %v, want 80", got)
	}

	// Resistance stiffens as the pull grows: the same delta adds less.
	before := m.Pull()
	m.Move(100)
	added := m.Pull() - before
	if added >= 80 {
		t.Errorf("second delta added %v, want less than the first 80", added)
	}

	m.Move(1e9)
	if got := m.Pull(); got > m.cfg.MaxPull {
		t.Errorf("pull = %v, exceeds MaxPull %v", got, m.cfg.MaxPull)
	}
}

func TestMove_NegativeDeltaClampedAtZero(t *testing.T) {
	m, _ := testMachine(Config{})

	m.Start(0, 0)
	m.Move(100) // pull 80
	m.Move(-1e6)
	if got := m.Pull(); got != 0 {
		t.Errorf("pull = %v, want clamped at 0", got)
	}
}

func TestStart_ExclusionZoneIgnored(t *testing.T) {
	m, _ := testMachine(Config{
		Exclusion: func(x, y float64) bool { return y < 50 },
	})

	m.Start(100, 10)
	if m.State() != StateIdle {
		t.Fatalf("gesture in exclusion zone must not start, state = %q", m.State())
	}

	m.Move(400)
	m.Release()
	expectNoEvent(t, m)

	// Outside the zone the machine starts normally.
	m.Start(100, 200)
	if m.State() != StatePulling {
		t.Errorf("state = %q, want pulling", m.State())
	}
}

func TestMoveAndRelease_IgnoredWhenIdle(t *testing.T) {
	m, _ := testMachine(Config{})

	m.Move(400)
	m.Release()
	expectNoEvent(t, m)
	if m.Pull() != 0 {
		t.Errorf("pull = %v, want 0", m.Pull())
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.ActivationThreshold != 120 || cfg.MaxPull != 240 {
		t.Errorf("distance defaults = %v / %v", cfg.ActivationThreshold, cfg.MaxPull)
	}
	if cfg.BaseResistance != 0.8 {
		t.Errorf("BaseResistance = %v, want 0.8", cfg.BaseResistance)
	}
	if cfg.HoldDuration != 600*time.Millisecond {
		t.Errorf("HoldDuration = %v, want 600ms", cfg.HoldDuration)
	}
}
