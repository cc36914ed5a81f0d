package cache

import (
	"testing"
	"time"
)

func TestDecisionCache_PutGet(t *testing.T) {
	t.Parallel()

	c := New(2)
	c.Put(1, true)
	c.Put(2, false)

	if v, ok := c.Get(1); !ok || v != true {
		t.Errorf("Get(1) = (%v, %v), want (true, true)", v, ok)
	}
	if v, ok := c.Get(2); !ok || v != false {
		t.Errorf("Get(2) = (%v, %v), want (false, true)", v, ok)
	}
}

func TestDecisionCache_Miss(t *testing.T) {
	t.Parallel()

	c := New(2)
	if _, ok := c.Get(99); ok {
		t.Error("Get() ok = true for unknown key, want false")
	}
}

func TestDecisionCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := New(2)
	c.Put(1, true)
	c.Put(2, true)
	c.Get(1) // promote 1, leaving 2 as LRU
	c.Put(3, true)

	if _, ok := c.Get(2); ok {
		t.Error("Get(2) ok = true, want false (2 should have been evicted as LRU)")
	}
	if _, ok := c.Get(1); !ok {
		t.Error("Get(1) ok = false, want true (1 was promoted, should survive)")
	}
	if _, ok := c.Get(3); !ok {
		t.Error("Get(3) ok = false, want true (just inserted)")
	}
}

func TestDecisionCache_ZeroSizeDisabled(t *testing.T) {
	t.Parallel()

	c := New(0)
	c.Put(1, true)
	if _, ok := c.Get(1); ok {
		t.Error("Get() ok = true for a zero-size cache, want caching disabled entirely")
	}
}

func TestDecisionCache_Clear(t *testing.T) {
	t.Parallel()

	c := New(4)
	c.Put(1, true)
	c.Clear()
	if _, ok := c.Get(1); ok {
		t.Error("Get() ok = true after Clear(), want false")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after Clear(), want 0", c.Size())
	}
}

func TestKey_DeterministicAndSensitiveToInputs(t *testing.T) {
	t.Parallel()

	moment := time.Date(2025, 6, 4, 13, 0, 0, 0, time.UTC)
	a := Key("room-1", "Room", 1, moment)
	b := Key("room-1", "Room", 1, moment)
	if a != b {
		t.Error("Key() is not deterministic for identical inputs")
	}

	if Key("room-2", "Room", 1, moment) == a {
		t.Error("Key() collided across different subject ids")
	}
	if Key("room-1", "Room", 2, moment) == a {
		t.Error("Key() collided across different rule versions")
	}
	if Key("room-1", "Room", 1, moment.Add(time.Hour)) == a {
		t.Error("Key() collided across different moments")
	}
}

func TestKey_SubSecondPrecisionIgnored(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 4, 13, 0, 0, 0, time.UTC)
	withNanos := base.Add(500 * time.Millisecond)

	if Key("room-1", "Room", 1, base) != Key("room-1", "Room", 1, withNanos) {
		t.Error("Key() should truncate to the second, sub-second jitter must not change the key")
	}
}
