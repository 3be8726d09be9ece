package queue

import (
	"sync"
	"time"

	"videogen-service/pkg/config"
)

var (
	queueOnce        sync.Once
	defaultLaneQueue *LaneQueue
)

// DefaultLaneQueue returns the process-wide lane queue.
func DefaultLaneQueue() *LaneQueue {
	queueOnce.Do(func() {
		capacity := 100
		var uniqueFor time.Duration
		names := [3]string{"high", "medium", "low"}
		if cfg := config.GetGlobalConfig(); cfg != nil {
			if cfg.Worker.QueueCapacity > 0 {
				capacity = cfg.Worker.QueueCapacity
			}
			uniqueFor = cfg.Pipeline.UniqueFor
			names = [3]string{cfg.Pipeline.Lanes.High, cfg.Pipeline.Lanes.Medium, cfg.Pipeline.Lanes.Low}
		}
		defaultLaneQueue = NewLaneQueue(capacity, uniqueFor, names)
	})
	return defaultLaneQueue
}

// CloseDefaultLaneQueue shuts the process-wide lane queue.
func CloseDefaultLaneQueue() {
	if defaultLaneQueue != nil {
		_ = defaultLaneQueue.Close()
	}
}
