package temporal

// FrameExtractor slices a signal into fixed-length analysis frames at a
// regular hop. Only complete frames are produced; a trailing remainder
// shorter than the frame length is dropped rather than zero-padded, so
// every frame statistic is computed over real samples.
type FrameExtractor struct {
	frameLength int
	hopLength   int
}

// NewFrameExtractor creates a frame extractor with the given frame and hop
// lengths in samples.
func NewFrameExtractor(frameLength, hopLength int) *FrameExtractor {
	return &FrameExtractor{
		frameLength: frameLength,
		hopLength:   hopLength,
	}
}

// NumFrames returns the number of complete frames available in a signal of
// length n: 1 + (n-frameLength)/hopLength, or 0 when the signal is shorter
// than one frame.
func (fe *FrameExtractor) NumFrames(n int) int {
	if n < fe.frameLength || fe.frameLength <= 0 || fe.hopLength <= 0 {
		return 0
	}
	return (n-fe.frameLength)/fe.hopLength + 1
}

// Frames returns the complete frames of the signal. Frames alias the input
// slice; callers must not modify them.
func (fe *FrameExtractor) Frames(signal []float64) [][]float64 {
	numFrames := fe.NumFrames(len(signal))
	if numFrames == 0 {
		return [][]float64{}
	}

	frames := make([][]float64, numFrames)
	for i := 0; i < numFrames; i++ {
		start := i * fe.hopLength
		frames[i] = signal[start : start+fe.frameLength]
	}

	return frames
}
