package worker

import (
	"time"

	"github.com/raoulx24/btrfs-autosnap/internal/config"
)

// Job is one scheduled rotation tick submitted to the daemon's run loop.
type Job struct {
	Rotation config.Rotation
	Fired    time.Time
}
