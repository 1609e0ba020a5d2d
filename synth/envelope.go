package synth

import (
	"math"

	"github.com/chiptrack/chiptrack"
)

// EnvelopeValue returns the level of the envelope t milliseconds after the
// note started, when the note is held for gateLength milliseconds.
//
// While the gate is open, the level ramps from 0 to Amplitude during Attack,
// then to the sustain level during Decay, and stays there. After the gate
// closes, the level ramps from wherever it was at gateLength down to 0 during
// Release. If the gate closed during the attack, the release starts from the
// partial attack height.
func EnvelopeValue(env chiptrack.Envelope, t, gateLength float64) float64 {
	if t > gateLength {
		release := float64(env.Release)
		if t-gateLength >= release {
			return 0
		}
		height := gatedValue(env, gateLength)
		return height - height/release*(t-gateLength)
	}
	return gatedValue(env, t)
}

// gatedValue evaluates the attack, decay and sustain phases at t.
func gatedValue(env chiptrack.Envelope, t float64) float64 {
	if t <= 0 {
		return 0 // every note starts from silence
	}
	attack := float64(env.Attack)
	decay := float64(env.Decay)
	amplitude := float64(env.Amplitude)
	sustain := float64(env.Sustain) / chiptrack.MaxSustain * amplitude
	switch {
	case t < attack:
		return amplitude / attack * t
	case t < attack+decay:
		return amplitude - (amplitude-sustain)/decay*(t-attack)
	default:
		return sustain
	}
}

// LFOValue returns the value of a cosine LFO t milliseconds after the note
// started. The LFO starts at +Amplitude.
func LFOValue(lfo chiptrack.LFO, t float64) float64 {
	return math.Cos(t/1000*float64(lfo.Frequency)*2*math.Pi) * float64(lfo.Amplitude)
}

// VolumeAt returns the volume of the instrument at time t, in the range [0,
// volume]. The amplitude envelope and LFO are summed, clamped to [0,
// AmpEnvelope.Amplitude] and scaled so that a level of 1024 equals volume.
func VolumeAt(instr chiptrack.Instrument, gateLength, t float64, volume int) int {
	mod := 0.0
	if instr.AmpEnvelope.Enabled() {
		mod += EnvelopeValue(instr.AmpEnvelope, t, gateLength)
	}
	if lfo, ok := instr.AmpLFO.Get(); ok && lfo.Enabled() {
		mod += LFOValue(lfo, t)
	}
	mod = math.Max(math.Min(mod, float64(instr.AmpEnvelope.Amplitude)), 0)
	return int(mod / 1024 * float64(volume))
}

// PitchAt returns the frequency of the instrument at time t when playing a
// note of noteFrequency Hz. The pitch envelope and LFO are added to the note
// frequency; the result never goes below 0.
func PitchAt(instr chiptrack.Instrument, noteFrequency, gateLength, t float64) int {
	mod := 0.0
	if env, ok := instr.PitchEnvelope.Get(); ok && env.Enabled() {
		mod += EnvelopeValue(env, t, gateLength)
	}
	if lfo, ok := instr.PitchLFO.Get(); ok && lfo.Enabled() {
		mod += LFOValue(lfo, t)
	}
	return int(math.Max(noteFrequency+mod, 0))
}
