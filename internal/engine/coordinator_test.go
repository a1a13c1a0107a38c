package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Josinosle/TABPP/internal/adapters/memory"
	"github.com/Josinosle/TABPP/internal/adapters/mock"
	"github.com/Josinosle/TABPP/internal/domain"
)

const (
	testHigh = "throughput-performance"
	testLow  = "powersave"
	testMax  = 1000

	testBattery = mock.BatteryPath
)

type coordinatorFixture struct {
	coordinator *Coordinator
	poller      *AmbientPoller
	backlight   *mock.FakeBacklight
	sensor      *mock.FakeSensor
	profiles    *mock.FakeProfiles
	power       *mock.FakePower
	journal     *memory.TransitionJournal
}

func newCoordinatorFixture(t *testing.T, initial domain.PowerState) *coordinatorFixture {
	t.Helper()

	cfg := ControllerConfig{Scale: 200, Steps: 10, StepDelay: time.Millisecond}
	controller, backlight, sensor := newTestController(t, testMax, 100, 2, cfg)
	poller := NewAmbientPoller(controller, 5*time.Millisecond)
	profiles := mock.NewFakeProfiles()
	power := mock.NewFakePower(initial)
	journal := memory.NewTransitionJournal(16)

	f := &coordinatorFixture{
		coordinator: NewCoordinator(controller, poller, NewProfileSwitcher(profiles, testHigh, testLow), power, testBattery, journal),
		poller:      poller,
		backlight:   backlight,
		sensor:      sensor,
		profiles:    profiles,
		power:       power,
		journal:     journal,
	}
	t.Cleanup(func() { poller.Stop() })
	return f
}

func stateEvent(state domain.PowerState) domain.PowerEvent {
	return domain.PowerEvent{Path: testBattery, State: &state}
}

func lastProfile(t *testing.T, profiles *mock.FakeProfiles) string {
	t.Helper()
	applied := profiles.Applied()
	if len(applied) == 0 {
		t.Fatal("no profile applied")
	}
	return applied[len(applied)-1]
}

func TestCoordinator_ChargingStopsPollerAndMaxesBrightness(t *testing.T) {
	f := newCoordinatorFixture(t, domain.StateUnknown)
	ctx := context.Background()

	f.coordinator.OnPropertiesChanged(ctx, stateEvent(domain.StateDischarging))
	if !f.poller.Running() {
		t.Fatal("poller should run on battery")
	}
	waitFor(t, time.Second, func() bool { return f.backlight.Level() == 400 })

	f.coordinator.OnPropertiesChanged(ctx, stateEvent(domain.StateCharging))

	if f.poller.Running() {
		t.Fatal("poller should be joined before the AC branch returns")
	}
	if f.backlight.Level() != testMax {
		t.Errorf("expected full brightness %d, got %d", testMax, f.backlight.Level())
	}
	if got := lastProfile(t, f.profiles); got != testHigh {
		t.Errorf("expected %q, got %q", testHigh, got)
	}

	// nothing may overwrite the maximum once the poller is stopped
	f.backlight.ResetWrites()
	time.Sleep(30 * time.Millisecond)
	if writes := f.backlight.Writes(); len(writes) != 0 {
		t.Errorf("unexpected writes after AC transition: %v", writes)
	}
}

func TestCoordinator_FullyChargedTakesACBranch(t *testing.T) {
	f := newCoordinatorFixture(t, domain.StateUnknown)

	f.coordinator.OnPropertiesChanged(context.Background(), stateEvent(domain.StateFullyCharged))

	if f.backlight.Level() != testMax {
		t.Errorf("expected full brightness, got %d", f.backlight.Level())
	}
	if got := lastProfile(t, f.profiles); got != testHigh {
		t.Errorf("expected %q, got %q", testHigh, got)
	}
}

func TestCoordinator_DischargingStartsPollerOnce(t *testing.T) {
	f := newCoordinatorFixture(t, domain.StateUnknown)
	ctx := context.Background()

	f.coordinator.OnPropertiesChanged(ctx, stateEvent(domain.StateDischarging))
	if !f.poller.Running() {
		t.Fatal("poller should be running")
	}
	if got := lastProfile(t, f.profiles); got != testLow {
		t.Errorf("expected %q, got %q", testLow, got)
	}

	// a second identical event must not launch another loop
	if f.poller.Start(ctx) {
		t.Fatal("poller unexpectedly accepted a second start")
	}
	f.coordinator.OnPropertiesChanged(ctx, stateEvent(domain.StateDischarging))
	if !f.poller.Running() {
		t.Fatal("poller should still be running")
	}
	if n := len(f.profiles.Applied()); n != 2 {
		t.Errorf("every battery event should apply the profile, got %v", f.profiles.Applied())
	}

	waitFor(t, time.Second, func() bool { return f.backlight.Level() == 400 })
}

func TestCoordinator_BatteryEventsReapplyProfile(t *testing.T) {
	f := newCoordinatorFixture(t, domain.StateUnknown)
	ctx := context.Background()

	f.coordinator.OnPropertiesChanged(ctx, stateEvent(domain.StateDischarging))
	f.coordinator.OnPropertiesChanged(ctx, stateEvent(domain.StateEmpty))

	applied := f.profiles.Applied()
	if len(applied) != 2 || applied[0] != testLow || applied[1] != testLow {
		t.Errorf("expected %q applied for each battery event, got %v", testLow, applied)
	}
}

func TestCoordinator_IgnoresUntrackedDevices(t *testing.T) {
	f := newCoordinatorFixture(t, domain.StateUnknown)
	ctx := context.Background()

	f.coordinator.OnPropertiesChanged(ctx, stateEvent(domain.StateCharging))
	before := len(f.profiles.Applied())

	// a wireless mouse running on its own battery
	discharging := domain.StateDischarging
	f.coordinator.OnPropertiesChanged(ctx, domain.PowerEvent{
		Path:  "/org/freedesktop/UPower/devices/mouse_hidpp_battery_0",
		State: &discharging,
	})

	if f.poller.Running() {
		t.Error("peripheral battery started the poller")
	}
	if n := len(f.profiles.Applied()); n != before {
		t.Errorf("peripheral battery applied a profile: %v", f.profiles.Applied())
	}
	status := f.coordinator.Status(ctx)
	if status.State != domain.StateCharging {
		t.Errorf("peripheral battery changed the tracked state to %v", status.State)
	}
	if status.LastTransition == nil || status.LastTransition.Action != domain.ActionExternalPower {
		t.Errorf("peripheral battery was journaled: %+v", status.LastTransition)
	}
}

func TestCoordinator_EmptyTakesBatteryBranch(t *testing.T) {
	f := newCoordinatorFixture(t, domain.StateUnknown)

	f.coordinator.OnPropertiesChanged(context.Background(), stateEvent(domain.StateEmpty))

	if !f.poller.Running() {
		t.Error("poller should be running on Empty")
	}
	if got := lastProfile(t, f.profiles); got != testLow {
		t.Errorf("expected %q, got %q", testLow, got)
	}
}

func TestCoordinator_InertStates(t *testing.T) {
	for _, state := range []domain.PowerState{domain.StateUnknown, domain.StatePendingCharge, domain.StatePendingDischarge} {
		t.Run(state.String(), func(t *testing.T) {
			f := newCoordinatorFixture(t, domain.StateUnknown)
			ctx := context.Background()

			f.coordinator.OnPropertiesChanged(ctx, stateEvent(state))

			if f.poller.Running() {
				t.Error("inert state started the poller")
			}
			if n := len(f.backlight.Writes()); n != 0 {
				t.Errorf("inert state wrote brightness %d times", n)
			}
			if n := len(f.profiles.Applied()); n != 0 {
				t.Errorf("inert state applied %d profiles", n)
			}

			latest, err := f.journal.GetLatestTransition(ctx)
			if err != nil {
				t.Fatalf("GetLatestTransition failed: %v", err)
			}
			if latest.Action != domain.ActionNone || latest.State != state {
				t.Errorf("journal recorded %+v", latest)
			}
		})
	}
}

func TestCoordinator_OnlineIsInformational(t *testing.T) {
	f := newCoordinatorFixture(t, domain.StateUnknown)
	ctx := context.Background()
	online := true

	f.coordinator.OnPropertiesChanged(ctx, domain.PowerEvent{Path: "/org/freedesktop/UPower/devices/line_power_AC", Online: &online})

	if f.poller.Running() || len(f.backlight.Writes()) != 0 || len(f.profiles.Applied()) != 0 {
		t.Error("Online change must not trigger actions")
	}
	status := f.coordinator.Status(ctx)
	if !status.ACKnown || !status.ACOnline {
		t.Errorf("expected AC online in status, got %+v", status)
	}
	if status.StateKnown {
		t.Error("state should still be unknown")
	}

	// AC online while still discharging keeps the battery branch
	discharging := domain.StateDischarging
	f.coordinator.OnPropertiesChanged(ctx, domain.PowerEvent{Online: &online, State: &discharging})
	if !f.poller.Running() {
		t.Error("combined event should follow State, not Online")
	}
}

func TestCoordinator_FailuresDoNotStopHandling(t *testing.T) {
	f := newCoordinatorFixture(t, domain.StateUnknown)
	ctx := context.Background()

	f.backlight.FailWrites(errors.New("write failed"))
	f.profiles.FailWith(errors.New("tuned-adm missing"))

	f.coordinator.OnPropertiesChanged(ctx, stateEvent(domain.StateCharging))
	if f.backlight.Level() != 100 {
		t.Errorf("failed write should leave level at 100, got %d", f.backlight.Level())
	}

	f.coordinator.OnPropertiesChanged(ctx, stateEvent(domain.StateDischarging))
	if !f.poller.Running() {
		t.Error("poller should start despite the failed profile switch")
	}

	f.backlight.FailWrites(nil)
	f.profiles.FailWith(nil)
	f.coordinator.OnPropertiesChanged(ctx, stateEvent(domain.StateCharging))
	if f.backlight.Level() != testMax {
		t.Errorf("expected recovery to full brightness, got %d", f.backlight.Level())
	}
	if got := lastProfile(t, f.profiles); got != testHigh {
		t.Errorf("expected %q, got %q", testHigh, got)
	}
}

func TestCoordinator_ReconcileOnStartup(t *testing.T) {
	f := newCoordinatorFixture(t, domain.StateEmpty)
	ctx := context.Background()

	f.coordinator.Reconcile(ctx)

	if !f.poller.Running() {
		t.Error("reconciliation should start the poller on Empty")
	}
	if got := lastProfile(t, f.profiles); got != testLow {
		t.Errorf("expected %q, got %q", testLow, got)
	}
	latest, err := f.journal.GetLatestTransition(ctx)
	if err != nil {
		t.Fatalf("GetLatestTransition failed: %v", err)
	}
	if latest.Origin != domain.OriginReconcile {
		t.Errorf("expected reconcile origin, got %q", latest.Origin)
	}
}

func TestCoordinator_ReconcileQueryFailure(t *testing.T) {
	f := newCoordinatorFixture(t, domain.StateDischarging)
	f.power.FailWith(errors.New("upower not running"))

	f.coordinator.Reconcile(context.Background())

	if f.poller.Running() || len(f.profiles.Applied()) != 0 {
		t.Error("failed query should take no action")
	}
}

func TestCoordinator_Run(t *testing.T) {
	f := newCoordinatorFixture(t, domain.StateDischarging)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := f.power.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- f.coordinator.Run(ctx, events) }()

	// reconciliation happens without any event
	waitFor(t, time.Second, f.poller.Running)

	f.power.SendOnline(true)
	f.power.SendState(domain.StateCharging)
	waitFor(t, time.Second, func() bool {
		return !f.poller.Running() && f.backlight.Level() == testMax
	})

	f.power.SendState(domain.StateDischarging)
	waitFor(t, time.Second, f.poller.Running)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if f.poller.Running() {
		t.Error("Run should stop the poller on exit")
	}

	status := f.coordinator.Status(context.Background())
	if status.State != domain.StateDischarging || !status.ACOnline {
		t.Errorf("unexpected final status %+v", status)
	}
}

func TestCoordinator_RunStreamClosed(t *testing.T) {
	f := newCoordinatorFixture(t, domain.StateUnknown)
	events := make(chan domain.PowerEvent)
	close(events)

	err := f.coordinator.Run(context.Background(), events)
	if !errors.Is(err, domain.ErrEventStreamClosed) {
		t.Errorf("expected ErrEventStreamClosed, got %v", err)
	}
}

func TestCoordinator_Status(t *testing.T) {
	f := newCoordinatorFixture(t, domain.StateUnknown)
	ctx := context.Background()

	f.coordinator.OnPropertiesChanged(ctx, stateEvent(domain.StateFullyCharged))
	status := f.coordinator.Status(ctx)

	if status.State != domain.StateFullyCharged || !status.StateKnown {
		t.Errorf("unexpected state %v", status.State)
	}
	if status.Brightness != testMax || status.MaxBrightness != testMax {
		t.Errorf("unexpected brightness %d/%d", status.Brightness, status.MaxBrightness)
	}
	if status.ActiveProfile != testHigh {
		t.Errorf("unexpected profile %q", status.ActiveProfile)
	}
	if status.LastTransition == nil || status.LastTransition.Action != domain.ActionExternalPower {
		t.Errorf("unexpected last transition %+v", status.LastTransition)
	}
}
