package util

import (
	"testing"
	"time"
)

func TestJitterStaysInRange(t *testing.T) {
	base := 5 * time.Second
	spread := 2 * time.Second
	for i := 0; i < 100; i++ {
		d := Jitter(base, spread)
		if d < base || d >= base+spread {
			t.Fatalf("Jitter returned %v outside [%v, %v)", d, base, base+spread)
		}
	}
}

func TestJitterZeroSpread(t *testing.T) {
	if d := Jitter(time.Second, 0); d != time.Second {
		t.Errorf("expected base duration, got %v", d)
	}
	if d := Jitter(time.Second, -time.Second); d != time.Second {
		t.Errorf("negative spread should return base, got %v", d)
	}
}
