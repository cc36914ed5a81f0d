package availability

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain guards the engine's contract that evaluation starts no
// background work (spec §5: no internal channels or background tasks) by
// failing the whole package if any test leaks a goroutine, e.g. from a
// misbehaving inventory resolver or cache path.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
