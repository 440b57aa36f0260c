package debounce

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, v)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	rec := &recorder{}
	d := New(50*time.Millisecond, rec.record)

	for _, q := range []string{"g", "go", "gol", "gola"} {
		d.Trigger(q)
		time.Sleep(10 * time.Millisecond)
	}
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("fired during burst: %v", got)
	}

	time.Sleep(200 * time.Millisecond)
	got := rec.snapshot()
	if len(got) != 1 || got[0] != "gola" {
		t.Errorf("calls = %v, want [gola]", got)
	}
}

func TestDebouncer_OncePerQuietPeriod(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.record)

	d.Trigger("a")
	time.Sleep(120 * time.Millisecond)
	d.Trigger("b")
	time.Sleep(120 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("calls = %v, want [a b]", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.record)

	d.Trigger("x")
	d.Stop()
	if d.Pending() {
		t.Error("Pending() after Stop")
	}
	time.Sleep(80 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("calls after Stop = %v", got)
	}
}

func TestDebouncer_Flush(t *testing.T) {
	rec := &recorder{}
	d := New(time.Hour, rec.record)

	if d.Flush() {
		t.Error("Flush() with nothing pending reported true")
	}
	d.Trigger("now")
	if !d.Flush() {
		t.Fatal("Flush() = false with pending call")
	}
	if got := rec.snapshot(); len(got) != 1 || got[0] != "now" {
		t.Errorf("calls = %v, want [now]", got)
	}
	if d.Pending() {
		t.Error("still pending after Flush")
	}
}
