package transport

import (
	"testing"
	"time"
)

func TestBackoffGrowthAndCap(t *testing.T) {
	b := NewBackoff(time.Second, 4*time.Second, 2, 0)

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Fatalf("delay %d = %v, want %v", i, got, w)
		}
	}
	if b.Attempts() != len(want) {
		t.Fatalf("attempts = %d, want %d", b.Attempts(), len(want))
	}
}

func TestBackoffJitterBounds(t *testing.T) {
	b := NewBackoff(time.Second, time.Minute, 2, 0.3)

	for i := 0; i < 20; i++ {
		b.Reset()
		d := b.Next()
		if d < 700*time.Millisecond || d > 1300*time.Millisecond {
			t.Fatalf("jittered delay %v outside base*(1±0.3)", d)
		}
	}
}

func TestBackoffReset(t *testing.T) {
	b := NewBackoff(time.Second, time.Minute, 2, 0)
	b.Next()
	b.Next()

	b.Reset()
	if b.Attempts() != 0 {
		t.Fatalf("attempts after reset = %d", b.Attempts())
	}
	if got := b.Next(); got != time.Second {
		t.Fatalf("first delay after reset = %v, want %v", got, time.Second)
	}
}

func TestBackoffParameterFallbacks(t *testing.T) {
	b := NewBackoff(0, 0, 0, 2)
	if got := b.Next(); got != time.Second {
		t.Fatalf("fallback delay = %v, want %v", got, time.Second)
	}
}
