package rank

import "time"

// Recorder receives ranking measurements.
type Recorder interface {
	ObserveRank(scored int, elapsed time.Duration)
}
