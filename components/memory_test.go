package components

import (
	"testing"

	"github.com/pthm-cable/ranger/geom"
)

func TestMemoryEvictsOldest(t *testing.T) {
	m := NewMemory(3)
	for i := 0; i < 5; i++ {
		m.Remember(geom.V(float64(i), 0), int32(i))
	}

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
	entries := m.Entries()
	for i, want := range []float64{2, 3, 4} {
		if entries[i].Pos.X != want {
			t.Errorf("entries[%d].Pos.X = %v, want %v", i, entries[i].Pos.X, want)
		}
	}
}

func TestMemoryLatest(t *testing.T) {
	tests := []struct {
		name   string
		ticks  []int32
		now    int32
		ttl    int
		wantOK bool
		wantX  float64
	}{
		{"empty", nil, 10, 5, false, 0},
		{"newest fresh", []int32{1, 8}, 10, 5, true, 1},
		{"newest expired", []int32{1, 2}, 10, 5, false, 0},
		{"boundary inclusive", []int32{5}, 10, 5, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory(3)
			for i, tick := range tt.ticks {
				m.Remember(geom.V(float64(i), 0), tick)
			}
			got, ok := m.Latest(tt.now, tt.ttl)
			if ok != tt.wantOK {
				t.Fatalf("Latest ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Pos.X != tt.wantX {
				t.Errorf("Latest pos.X = %v, want %v", got.Pos.X, tt.wantX)
			}
		})
	}
}

func TestMemoryForget(t *testing.T) {
	m := NewMemory(3)
	m.Remember(geom.V(0, 0), 1)
	m.Remember(geom.V(100, 100), 2)

	m.Forget(geom.V(101, 100), 5)
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
	if m.Entries()[0].Pos != geom.V(0, 0) {
		t.Errorf("wrong sighting forgotten: %v remains", m.Entries()[0].Pos)
	}
}

func TestMemoryForgetsClosest(t *testing.T) {
	m := NewMemory(3)
	m.Remember(geom.V(0, 0), 1)
	m.Remember(geom.V(10, 0), 2)
	m.Remember(geom.V(50, 0), 3)

	// Both of the first two are in reach; the older one is closer.
	m.Forget(geom.V(1, 0), 20)

	want := []geom.Vector2{geom.V(10, 0), geom.V(50, 0)}
	entries := m.Entries()
	if len(entries) != len(want) {
		t.Fatalf("Len() = %d, want %d", len(entries), len(want))
	}
	for i, w := range want {
		if entries[i].Pos != w {
			t.Errorf("entries[%d].Pos = %v, want %v", i, entries[i].Pos, w)
		}
	}

	m.Forget(geom.V(200, 0), 20)
	if m.Len() != 2 {
		t.Errorf("Len() = %d after forgetting out of reach, want 2", m.Len())
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindDrone:   "drone",
		KindAnimal:  "animal",
		KindPoacher: "poacher",
		Kind(9):     "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestKindTextRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindDrone, KindAnimal, KindPoacher} {
		text, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", k, err)
		}
		var got Kind
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if got != k {
			t.Errorf("round trip of %v = %v", k, got)
		}
	}

	var k Kind
	if err := k.UnmarshalText([]byte("ranger")); err == nil {
		t.Error("UnmarshalText accepted an unknown kind")
	}
}
