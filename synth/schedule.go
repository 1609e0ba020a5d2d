package synth

import (
	"math"

	"github.com/chiptrack/chiptrack"
)

type (
	// Source tells which modulation source caused a time point. The order of
	// the constants is also the tie-break priority: when two sources have a
	// breakpoint at the same time, the one with the smaller Source wins.
	Source int

	// TimePoint is a time, in milliseconds from the start of the note, where
	// the sound should be sampled because some modulation source changes its
	// slope there.
	TimePoint struct {
		Time   float64
		Source Source
	}

	// phase is the state of a breakpoint generator. For envelopes, it is the
	// segment of the curve the next breakpoint ends; for LFOs it is unused.
	phase int

	// breakpoints is a pure generator: given its current phase and the time
	// of the last emitted point, it returns the next breakpoint strictly
	// after that time and the phase following it.
	breakpoints func(ph phase, t float64) (float64, phase)

	cursor struct {
		source Source
		time   float64
		phase  phase
		next   breakpoints
	}
)

const (
	NoteOn Source = iota - 1
	AmpEnvelope
	PitchEnvelope
	PitchLFO
	AmpLFO
)

const (
	phaseAttack phase = iota
	phaseDecay
	phaseSustain
	phaseRelease
	phaseTail
	phaseDone
)

// MinLFOInterval is the shortest interval, in milliseconds, at which an LFO is
// sampled.
const MinLFOInterval = 50

func (s Source) String() string {
	switch s {
	case NoteOn:
		return "note on"
	case AmpEnvelope:
		return "amplitude envelope"
	case PitchEnvelope:
		return "pitch envelope"
	case PitchLFO:
		return "pitch LFO"
	case AmpLFO:
		return "amplitude LFO"
	}
	return "unknown"
}

// Schedule returns the ascending, de-duplicated time points at which a note
// of the instrument, held for gateLength milliseconds, should be sampled. The
// points cover [0, gateLength + AmpEnvelope.Release]: they start with 0 and
// end at the total duration, with a point wherever an envelope changes phase
// and at every LFO step of max(500 / frequency, MinLFOInterval) ms in between.
func Schedule(instr chiptrack.Instrument, gateLength float64) []TimePoint {
	total := gateLength + float64(instr.AmpEnvelope.Release)
	cursors := []*cursor{
		newCursor(AmpEnvelope, envelopeBreakpoints(instr.AmpEnvelope, gateLength, total)),
		newCursor(PitchEnvelope, pitchEnvelopeBreakpoints(instr, gateLength, total)),
		newCursor(PitchLFO, lfoBreakpoints(instr.PitchLFO)),
		newCursor(AmpLFO, lfoBreakpoints(instr.AmpLFO)),
	}
	points := []TimePoint{{Time: 0, Source: NoteOn}}
	for time := 0.0; time < total; {
		best := cursors[0]
		for _, c := range cursors[1:] {
			if c.time < best.time {
				best = c
			}
		}
		if math.IsInf(best.time, 1) {
			break
		}
		time = best.time
		points = append(points, TimePoint{Time: time, Source: best.source})
		for _, c := range cursors {
			if c.time <= time {
				c.time, c.phase = c.next(c.phase, time)
			}
		}
	}
	return points
}

// TimePoints returns just the times of Schedule.
func TimePoints(instr chiptrack.Instrument, gateLength float64) []float64 {
	points := Schedule(instr, gateLength)
	ret := make([]float64, len(points))
	for i, p := range points {
		ret[i] = p.Time
	}
	return ret
}

func newCursor(source Source, next breakpoints) *cursor {
	time, ph := next(phaseAttack, 0)
	return &cursor{source: source, time: time, phase: ph, next: next}
}

// envelopeBreakpoints yields the end of attack and decay if they end before
// the gate closes, then the gate, the end of the release and the end of the
// whole sound. The release of the amplitude envelope ends exactly at total,
// but a pitch envelope can have a shorter release.
func envelopeBreakpoints(env chiptrack.Envelope, gateLength, total float64) breakpoints {
	attack := float64(env.Attack)
	decay := float64(env.Decay)
	release := float64(env.Release)
	end := func(ph phase) (float64, bool) {
		switch ph {
		case phaseAttack:
			return attack, attack < gateLength
		case phaseDecay:
			return attack + decay, attack+decay < gateLength
		case phaseSustain:
			return gateLength, true
		case phaseRelease:
			return math.Min(gateLength+release, total), true
		case phaseTail:
			return total, true
		}
		return 0, false
	}
	return func(ph phase, t float64) (float64, phase) {
		for ; ph < phaseDone; ph++ {
			if at, ok := end(ph); ok && at > t {
				return at, ph + 1
			}
		}
		return math.Inf(1), phaseDone
	}
}

func pitchEnvelopeBreakpoints(instr chiptrack.Instrument, gateLength, total float64) breakpoints {
	env, ok := instr.PitchEnvelope.Get()
	if !ok || !env.Enabled() {
		return never
	}
	return envelopeBreakpoints(env, gateLength, total)
}

// lfoBreakpoints steps at fixed intervals of half the LFO period, but never
// more often than MinLFOInterval. An LFO with zero frequency is constant and
// yields no breakpoints.
func lfoBreakpoints(o chiptrack.Optional[chiptrack.LFO]) breakpoints {
	lfo, ok := o.Get()
	if !ok || !lfo.Enabled() || lfo.Frequency <= 0 {
		return never
	}
	interval := math.Max(500/float64(lfo.Frequency), MinLFOInterval)
	return func(ph phase, t float64) (float64, phase) {
		next := (math.Floor(t/interval) + 1) * interval
		if next <= t {
			next += interval
		}
		return next, ph
	}
}

func never(ph phase, t float64) (float64, phase) {
	return math.Inf(1), phaseDone
}
