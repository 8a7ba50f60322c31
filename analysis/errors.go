// Package analysis implements pause and prosody analysis of speech
// recordings: Hilbert envelope extraction, adaptive pause segmentation with
// breath/pathological classification, and the timing and prosody metrics
// derived from them.
package analysis

import "errors"

var (
	// ErrInvalidConfiguration reports a tuning parameter that cannot
	// produce a meaningful analysis, such as a smoothing cutoff at or
	// above the Nyquist frequency.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidInput reports malformed input data, such as mismatched
	// signal and envelope lengths or a non-positive sample rate.
	ErrInvalidInput = errors.New("invalid input")
)
