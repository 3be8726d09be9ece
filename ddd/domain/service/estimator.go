package service

import "math"

// estimatorWindowSize bounds the sliding window of progress samples. Five
// samples smooth single-poll throughput noise without lagging far behind a
// genuine speed change.
const estimatorWindowSize = 5

// ProgressEstimator derives a stable ETA from noisy backend progress reports.
// It keeps a bounded window of (execution_time, progress_percent) samples and
// extrapolates the remaining time from the window averages.
//
// Not safe for concurrent use; one estimator belongs to one drive attempt.
type ProgressEstimator struct {
	windowSize     int
	executionTimes []float64
	progresses     []float64
}

// NewProgressEstimator creates an estimator with the default window.
func NewProgressEstimator() *ProgressEstimator {
	return NewProgressEstimatorWithWindow(estimatorWindowSize)
}

// NewProgressEstimatorWithWindow creates an estimator with a custom window size.
func NewProgressEstimatorWithWindow(windowSize int) *ProgressEstimator {
	if windowSize <= 0 {
		windowSize = estimatorWindowSize
	}
	return &ProgressEstimator{windowSize: windowSize}
}

// Observe pushes one sample, evicting the oldest once the window is full.
// Progress is a percentage in [0,100].
func (e *ProgressEstimator) Observe(executionTime, progress float64) {
	e.executionTimes = append(e.executionTimes, executionTime)
	e.progresses = append(e.progresses, progress)
	if len(e.executionTimes) > e.windowSize {
		e.executionTimes = e.executionTimes[1:]
	}
	if len(e.progresses) > e.windowSize {
		e.progresses = e.progresses[1:]
	}
}

// AvgExecutionTime is the arithmetic mean of the windowed execution times.
func (e *ProgressEstimator) AvgExecutionTime() float64 {
	return mean(e.executionTimes)
}

// AvgProgress is the arithmetic mean of the windowed progress values.
func (e *ProgressEstimator) AvgProgress() float64 {
	return mean(e.progresses)
}

// ETASeconds extrapolates the remaining seconds from the window averages and
// the latest execution time. The second return is false while no estimate is
// possible (no samples yet, or average progress still zero).
func (e *ProgressEstimator) ETASeconds(latestExecutionTime float64) (int64, bool) {
	avgProgress := e.AvgProgress()
	if len(e.executionTimes) == 0 || avgProgress <= 0 {
		return 0, false
	}
	eta := math.Round(e.AvgExecutionTime()/avgProgress*100 - latestExecutionTime)
	if eta < 0 {
		eta = 0
	}
	return int64(eta), true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
