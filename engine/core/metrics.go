package core

import "sync"

const AVG_COUNT uint8 = 30

// FrameMetrics keeps a rolling frame-time average plus the draw and pass
// counters of the last rendered frame.
type FrameMetrics struct {
	mu sync.Mutex

	frameAVGCounter    uint8
	msTimes            [AVG_COUNT]float64
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64

	TotalFrames    uint64
	LastDrawCount  uint32
	LastPassCount  uint32
	LastSkipCount  uint32
	SkippedCameras uint64
}

func NewFrameMetrics() *FrameMetrics {
	return &FrameMetrics{}
}

// Update records a frame that took frameElapsedTime seconds.
func (m *FrameMetrics) Update(frameElapsedTime float64, draws, passes, skips uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameMS := frameElapsedTime * 1000.0
	m.msTimes[m.frameAVGCounter] = frameMS
	if m.frameAVGCounter == AVG_COUNT-1 {
		m.msAvg = 0
		for i := uint8(0); i < AVG_COUNT; i++ {
			m.msAvg += m.msTimes[i]
		}
		m.msAvg /= float64(AVG_COUNT)
	}
	m.frameAVGCounter++
	m.frameAVGCounter %= AVG_COUNT

	m.accumulatedFrameMS += frameMS
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
	}
	m.frames++

	m.TotalFrames++
	m.LastDrawCount = draws
	m.LastPassCount = passes
	m.LastSkipCount = skips
}

func (m *FrameMetrics) CameraSkipped() {
	m.mu.Lock()
	m.SkippedCameras++
	m.mu.Unlock()
}

func (m *FrameMetrics) FPS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fps
}

func (m *FrameMetrics) FrameTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.msAvg
}

// Snapshot returns the counters; draws, passes and skips are of the last frame.
func (m *FrameMetrics) Snapshot() (frames uint64, draws, passes, skips uint32, skippedCameras uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.TotalFrames, m.LastDrawCount, m.LastPassCount, m.LastSkipCount, m.SkippedCameras
}
