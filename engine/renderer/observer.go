package renderer

import "time"

// Observer receives per-frame measurements from a FramePipeline. Calls are
// made on the goroutine driving the pipeline.
type Observer interface {
	FrameRendered(slot int, elapsed time.Duration)
	SlotReclaimed(slot int, waited time.Duration)
	AcquireFailed()
}

type nopObserver struct{}

func (nopObserver) FrameRendered(int, time.Duration) {}
func (nopObserver) SlotReclaimed(int, time.Duration) {}
func (nopObserver) AcquireFailed()                   {}
