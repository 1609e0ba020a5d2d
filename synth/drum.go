package synth

import (
	"errors"
	"fmt"

	"github.com/chiptrack/chiptrack"
)

// RenderDrumInstrument renders a drum sound into a segment stream. Every step
// becomes one segment ramping from the previous step's frequency and volume
// (or the start values, for the first step) to its own. Step volumes are in
// units of 1/1024 of volume. A 10 ms fade to silence with the waveform of the
// last step is appended. Steps with zero duration emit nothing but still set
// the starting point of the next step.
func RenderDrumInstrument(drum chiptrack.DrumInstrument, volume int) ([]byte, error) {
	if err := drum.Validate(); err != nil {
		return nil, fmt.Errorf("invalid drum sound: %w", err)
	}
	if volume < 0 {
		return nil, errors.New("volume should be >= 0")
	}
	scale := func(v int) float64 { return float64(v) / 1024 * float64(volume) }
	out := make([]byte, (len(drum.Steps)+1)*SegmentSize)
	prevVolume, prevFreq := drum.StartVolume, drum.StartFrequency
	offset := 0
	for _, step := range drum.Steps {
		if step.Duration > 0 {
			seg := newSegment(step.Waveform, step.Duration, scale(prevVolume), scale(step.Volume), prevFreq, step.Frequency)
			seg.put(out[offset:])
			offset += SegmentSize
		}
		prevVolume, prevFreq = step.Volume, step.Frequency
	}
	last := drum.Steps[len(drum.Steps)-1]
	fade := newSegment(last.Waveform, FadeDuration, scale(prevVolume), 0, prevFreq, prevFreq)
	fade.put(out[offset:])
	return out, nil
}
