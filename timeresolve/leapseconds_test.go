package timeresolve

import (
	"testing"
	"time"
)

func TestGPSUTCLeapSecondsAtKnownInstants(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want int
	}{
		{"at epoch", GPSEpoch, 0},
		{"just before first leap second", time.Date(1981, 6, 30, 23, 59, 59, 0, time.UTC), 0},
		{"just after first leap second", time.Date(1981, 7, 1, 0, 0, 0, 0, time.UTC), 1},
		{"2020, after 2017 step", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 18},
		{"long before epoch", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := GPSUTCLeapSecondsAt(c.at)
			if got != c.want {
				t.Fatalf("got %d, want %d", got, c.want)
			}
		})
	}
}

func TestCurrentGPSUTCLeapSecondsMatchesTableTail(t *testing.T) {
	got := CurrentGPSUTCLeapSeconds()
	if got != 18 {
		t.Fatalf("got %d, want 18", got)
	}
}
