package synth

import (
	"errors"
	"fmt"
	"math"

	"github.com/chiptrack/chiptrack"
)

// MinSegmentDuration is the shortest segment, in milliseconds, the renderer
// emits. Time points closer than this to the previous segment boundary are
// coalesced.
const MinSegmentDuration = 5

// RenderInstrument renders a single note of the instrument into a segment
// stream: noteFrequency is the frequency of the note in Hz, gateLength how
// long the note is held in milliseconds and volume the playback volume, with
// the envelope peak of 1024 mapping to volume.
//
// The envelopes and LFOs are sampled at the points returned by Schedule and
// each interval becomes one linear segment. A 10 ms fade to silence is always
// appended. The returned buffer is SegmentSize * (len(points) + 1) bytes;
// bytes after the fade are zero, which terminates the stream.
func RenderInstrument(instr chiptrack.Instrument, noteFrequency, gateLength float64, volume int) ([]byte, error) {
	if err := instr.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instrument: %w", err)
	}
	if gateLength < 0 || math.IsNaN(gateLength) {
		return nil, fmt.Errorf("gate length should be >= 0 (was %v)", gateLength)
	}
	if total := gateLength + float64(instr.AmpEnvelope.Release); total > math.MaxUint16 {
		return nil, fmt.Errorf("note would last %v ms; at most %v ms is supported", total, math.MaxUint16)
	}
	if noteFrequency < 0 || math.IsNaN(noteFrequency) {
		return nil, fmt.Errorf("note frequency should be >= 0 (was %v)", noteFrequency)
	}
	if volume < 0 {
		return nil, errors.New("volume should be >= 0")
	}
	points := TimePoints(instr, gateLength)
	out := make([]byte, SegmentSize*(len(points)+1))
	amp := func(t float64) int { return VolumeAt(instr, gateLength, t, volume) }
	pitch := func(t float64) int { return PitchAt(instr, noteFrequency, gateLength, t) }

	// points closer than MinSegmentDuration to the last boundary are dropped,
	// a short tail included; the fade starts from the last boundary's level
	prevTime, prevAmp, prevPitch := 0.0, amp(0), pitch(0)
	offset := 0
	for _, t := range points[1:] {
		if t-prevTime < MinSegmentDuration {
			continue
		}
		nextAmp, nextPitch := amp(t), pitch(t)
		seg := newSegment(instr.Waveform, int(t-prevTime), float64(prevAmp), float64(nextAmp), prevPitch, nextPitch)
		seg.put(out[offset:])
		offset += SegmentSize
		prevTime, prevAmp, prevPitch = t, nextAmp, nextPitch
	}
	fade := newSegment(instr.Waveform, FadeDuration, float64(prevAmp), 0, prevPitch, prevPitch)
	fade.put(out[offset:])
	return out, nil
}
