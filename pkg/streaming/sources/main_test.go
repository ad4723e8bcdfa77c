package sources

import (
	"testing"

	"go.uber.org/goleak"
)

// Cron schedulers and Redis receive loops stop asynchronously after release.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
