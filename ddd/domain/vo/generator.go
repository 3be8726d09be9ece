package vo

// GeneratorKind selects which backend technique renders a job.
type GeneratorKind string

const (
	// GeneratorVid2Vid frame-by-frame restyling of an uploaded video.
	GeneratorVid2Vid GeneratorKind = "vid2vid"
	// GeneratorDeforum animation rendered from a single init image.
	GeneratorDeforum GeneratorKind = "deforum"
)

// IsValid reports whether the kind is known.
func (g GeneratorKind) IsValid() bool {
	return g == GeneratorVid2Vid || g == GeneratorDeforum
}

func (g GeneratorKind) String() string {
	return string(g)
}

// Per-frame cost constants for the initial linear ETA guess, before any
// progress samples exist. Tuned from observed backend throughput.
const (
	vid2vidSecondsPerFrame = 10
	vid2vidFixedOverhead   = 5
	deforumSecondsPerFrame = 6
)

// InitialETASeconds is a rough linear ETA guess derived from the frame count.
func (g GeneratorKind) InitialETASeconds(frameCount int) int {
	if frameCount <= 0 {
		return 0
	}
	switch g {
	case GeneratorDeforum:
		return frameCount * deforumSecondsPerFrame
	default:
		return frameCount*vid2vidSecondsPerFrame + vid2vidFixedOverhead
	}
}
