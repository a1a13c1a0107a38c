package sysfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeAttr(t *testing.T, dir, name, value string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(value), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestBacklight(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "intel_backlight")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeAttr(t, dir, "max_brightness", "19393\n")
	writeAttr(t, dir, "brightness", "9000\n")

	b := NewBacklight(dir)
	ctx := context.Background()

	if b.Name() != "intel_backlight" {
		t.Errorf("unexpected name %q", b.Name())
	}
	max, err := b.ReadMax(ctx)
	if err != nil || max != 19393 {
		t.Fatalf("ReadMax() = %d, %v", max, err)
	}
	level, err := b.Read(ctx)
	if err != nil || level != 9000 {
		t.Fatalf("Read() = %d, %v", level, err)
	}

	if err := b.Write(ctx, 42); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	raw, _ := os.ReadFile(filepath.Join(dir, "brightness"))
	if string(raw) != "42" {
		t.Errorf("expected attribute to hold 42, got %q", raw)
	}
	level, _ = b.Read(ctx)
	if level != 42 {
		t.Errorf("expected 42 after write, got %d", level)
	}
}

func TestBacklight_MissingDevice(t *testing.T) {
	b := NewBacklight(filepath.Join(t.TempDir(), "missing"))
	ctx := context.Background()

	if _, err := b.ReadMax(ctx); err == nil {
		t.Error("expected error reading a missing device")
	}
	if err := b.Write(ctx, 1); err == nil {
		t.Error("expected error writing a missing device")
	}
}

func TestLightSensor(t *testing.T) {
	dir := t.TempDir()
	writeAttr(t, dir, DefaultIlluminanceAttribute, "17\n")
	writeAttr(t, dir, "in_illuminance_input", "not-a-number")

	lux, err := NewLightSensor(dir, "").Read(context.Background())
	if err != nil || lux != 17 {
		t.Fatalf("Read() = %d, %v; want 17", lux, err)
	}

	if _, err := NewLightSensor(dir, "in_illuminance_input").Read(context.Background()); err == nil {
		t.Error("expected parse error")
	}
}
