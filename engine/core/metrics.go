package core

import "time"

const AVG_COUNT uint8 = 30

// FrameStats keeps a rolling average of frame times and a once-per-second
// frames-per-second sample.
type FrameStats struct {
	frameAVGCounter    uint8
	msTimes            [AVG_COUNT]float64
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
}

func NewFrameStats() *FrameStats {
	return &FrameStats{}
}

func (s *FrameStats) Update(frameElapsed time.Duration) {
	// Calculate frame ms average
	frameMS := float64(frameElapsed) / float64(time.Millisecond)
	s.msTimes[s.frameAVGCounter] = frameMS
	if s.frameAVGCounter == AVG_COUNT-1 {
		sum := 0.0
		for i := uint8(0); i < AVG_COUNT; i++ {
			sum += s.msTimes[i]
		}
		s.msAvg = sum / float64(AVG_COUNT)
	}
	s.frameAVGCounter++
	s.frameAVGCounter %= AVG_COUNT

	// Count all frames.
	s.frames++

	// Calculate frames per second.
	s.accumulatedFrameMS += frameMS
	if s.accumulatedFrameMS >= 1000 {
		s.fps = float64(s.frames)
		s.accumulatedFrameMS -= 1000
		s.frames = 0
	}
}

func (s *FrameStats) FPS() float64 {
	return s.fps
}

// FrameTime is the average frame time in milliseconds over the last
// AVG_COUNT frames.
func (s *FrameStats) FrameTime() float64 {
	return s.msAvg
}
