package chiptrack

import (
	"encoding/json"
	"errors"
	"fmt"
)

type (
	// Instrument describes how a melodic track sounds: the waveform of the
	// tone generator and the modulation sources shaping each note. The
	// amplitude envelope is required, the rest are optional; a missing
	// modulation source is equivalent to one with zero amplitude.
	Instrument struct {
		Name          string `yaml:",omitempty"`
		Waveform      int
		AmpEnvelope   Envelope
		PitchEnvelope Optional[Envelope] `yaml:",omitempty"`
		AmpLFO        Optional[LFO]      `yaml:",omitempty"`
		PitchLFO      Optional[LFO]      `yaml:",omitempty"`

		// Octave is the octave the editor shows by default for this
		// instrument. Not encoded and not used by the renderer.
		Octave int `yaml:",omitempty"`

		// set when the instrument was decoded from a document that did not
		// have an amplitude envelope
		ampEnvelopeMissing bool
	}

	// Envelope is an attack-decay-sustain-release curve. Attack, Decay and
	// Release are in milliseconds. Sustain is the sustain level as a fraction
	// of Amplitude, in units of 1/1024; Amplitude is the peak level. An
	// envelope with zero Amplitude contributes nothing.
	Envelope struct {
		Attack    int
		Decay     int
		Sustain   int
		Release   int
		Amplitude int
	}

	// LFO is a cosine low frequency oscillator. Frequency is in Hz and
	// Amplitude is the modulation depth. An LFO with zero Amplitude
	// contributes nothing.
	LFO struct {
		Frequency int
		Amplitude int
	}

	// DrumInstrument is a drum sound authored as a literal list of steps. The
	// sound starts at StartFrequency and StartVolume, and each step ramps
	// linearly to its own frequency and volume during its duration.
	DrumInstrument struct {
		Name           string `yaml:",omitempty"`
		StartFrequency int
		StartVolume    int
		Steps          []DrumSoundStep
	}

	// DrumSoundStep is a single linear ramp of a drum sound. Volume is in
	// units of 1/1024 of the playback volume and Duration is in milliseconds.
	DrumSoundStep struct {
		Waveform  int
		Frequency int
		Volume    int
		Duration  int
	}
)

const (
	maxUint8  = 255
	maxUint16 = 65535

	// MaxSustain is the sustain level that equals the peak amplitude.
	MaxSustain = 1024
)

// Waveform codes understood by the tone generator. Codes 11 .. 15 are square
// waves with 10% .. 50% duty cycle.
const (
	WaveTriangle     = 1
	WaveSawtooth     = 2
	WaveSine         = 3
	WaveTunableNoise = 4
	WaveNoise        = 5
	WaveSquare10     = 11
	WaveSquare50     = 15
)

// Enabled reports whether the envelope contributes anything.
func (e Envelope) Enabled() bool {
	return e.Amplitude != 0
}

// Enabled reports whether the LFO contributes anything.
func (l LFO) Enabled() bool {
	return l.Amplitude != 0
}

// Copy makes a deep copy of an Instrument.
func (instr *Instrument) Copy() Instrument {
	return *instr // all fields are values
}

// Copy makes a deep copy of a DrumInstrument.
func (d *DrumInstrument) Copy() DrumInstrument {
	var steps []DrumSoundStep
	if d.Steps != nil {
		steps = make([]DrumSoundStep, len(d.Steps))
		copy(steps, d.Steps)
	}
	return DrumInstrument{Name: d.Name, StartFrequency: d.StartFrequency, StartVolume: d.StartVolume, Steps: steps}
}

// Duration returns the total length of the drum sound in milliseconds, not
// including the fade out appended by the renderer.
func (d *DrumInstrument) Duration() int {
	ret := 0
	for _, s := range d.Steps {
		ret += s.Duration
	}
	return ret
}

// Validate checks that all the fields fit the binary format and that the
// times are non-negative.
func (instr *Instrument) Validate() error {
	if instr.Waveform < 0 || instr.Waveform > maxUint8 {
		return fmt.Errorf("Waveform should be 0 .. %v (was %v)", maxUint8, instr.Waveform)
	}
	if instr.ampEnvelopeMissing {
		return errors.New("amplitude envelope is missing")
	}
	if err := instr.AmpEnvelope.Validate(); err != nil {
		return fmt.Errorf("amplitude envelope: %w", err)
	}
	if env, ok := instr.PitchEnvelope.Get(); ok {
		if err := env.Validate(); err != nil {
			return fmt.Errorf("pitch envelope: %w", err)
		}
	}
	if lfo, ok := instr.AmpLFO.Get(); ok {
		if err := lfo.Validate(); err != nil {
			return fmt.Errorf("amplitude LFO: %w", err)
		}
	}
	if lfo, ok := instr.PitchLFO.Get(); ok {
		if err := lfo.Validate(); err != nil {
			return fmt.Errorf("pitch LFO: %w", err)
		}
	}
	return nil
}

// Validate checks the ranges of the envelope parameters.
func (e *Envelope) Validate() error {
	for _, f := range []struct {
		name  string
		value int
	}{{"Attack", e.Attack}, {"Decay", e.Decay}, {"Release", e.Release}, {"Amplitude", e.Amplitude}} {
		if f.value < 0 || f.value > maxUint16 {
			return fmt.Errorf("%v should be 0 .. %v (was %v)", f.name, maxUint16, f.value)
		}
	}
	if e.Sustain < 0 || e.Sustain > MaxSustain {
		return fmt.Errorf("Sustain should be 0 .. %v (was %v)", MaxSustain, e.Sustain)
	}
	return nil
}

// Validate checks that the LFO frequency fits a byte and the amplitude 16
// bits.
func (l *LFO) Validate() error {
	if l.Frequency < 0 || l.Frequency > maxUint8 {
		return fmt.Errorf("Frequency should be 0 .. %v (was %v)", maxUint8, l.Frequency)
	}
	if l.Amplitude < 0 || l.Amplitude > maxUint16 {
		return fmt.Errorf("Amplitude should be 0 .. %v (was %v)", maxUint16, l.Amplitude)
	}
	return nil
}

// Validate checks that the drum sound has 1 .. 255 steps and every field fits
// the binary format.
func (d *DrumInstrument) Validate() error {
	if len(d.Steps) == 0 {
		return errors.New("drum sound has no steps")
	}
	if len(d.Steps) > maxUint8 {
		return fmt.Errorf("drum sound has more than %v steps", maxUint8)
	}
	if d.StartFrequency < 0 || d.StartFrequency > maxUint16 {
		return fmt.Errorf("StartFrequency should be 0 .. %v (was %v)", maxUint16, d.StartFrequency)
	}
	if d.StartVolume < 0 || d.StartVolume > maxUint16 {
		return fmt.Errorf("StartVolume should be 0 .. %v (was %v)", maxUint16, d.StartVolume)
	}
	for i, s := range d.Steps {
		if s.Waveform < 0 || s.Waveform > maxUint8 {
			return fmt.Errorf("step %v: Waveform should be 0 .. %v (was %v)", i, maxUint8, s.Waveform)
		}
		if s.Frequency < 0 || s.Frequency > maxUint16 {
			return fmt.Errorf("step %v: Frequency should be 0 .. %v (was %v)", i, maxUint16, s.Frequency)
		}
		if s.Volume < 0 || s.Volume > maxUint16 {
			return fmt.Errorf("step %v: Volume should be 0 .. %v (was %v)", i, maxUint16, s.Volume)
		}
		if s.Duration < 0 || s.Duration > maxUint16 {
			return fmt.Errorf("step %v: Duration should be 0 .. %v (was %v)", i, maxUint16, s.Duration)
		}
	}
	return nil
}

// instrumentFields mirrors Instrument with the amplitude envelope as a
// pointer, so that decoders can tell a missing envelope from a zero one.
type instrumentFields struct {
	Name          string `yaml:",omitempty"`
	Waveform      int
	AmpEnvelope   *Envelope
	PitchEnvelope Optional[Envelope] `yaml:",omitempty"`
	AmpLFO        Optional[LFO]      `yaml:",omitempty"`
	PitchLFO      Optional[LFO]      `yaml:",omitempty"`
	Octave        int                `yaml:",omitempty"`
}

func (f *instrumentFields) instrument() Instrument {
	ret := Instrument{
		Name:               f.Name,
		Waveform:           f.Waveform,
		PitchEnvelope:      f.PitchEnvelope,
		AmpLFO:             f.AmpLFO,
		PitchLFO:           f.PitchLFO,
		Octave:             f.Octave,
		ampEnvelopeMissing: f.AmpEnvelope == nil,
	}
	if f.AmpEnvelope != nil {
		ret.AmpEnvelope = *f.AmpEnvelope
	}
	return ret
}

// UnmarshalYAML decodes an Instrument with both gopkg.in/yaml.v2 and
// gopkg.in/yaml.v3. An instrument without an amplitude envelope decodes, but
// does not pass Validate.
func (instr *Instrument) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var f instrumentFields
	if err := unmarshal(&f); err != nil {
		return err
	}
	*instr = f.instrument()
	return nil
}

func (instr *Instrument) UnmarshalJSON(data []byte) error {
	var f instrumentFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*instr = f.instrument()
	return nil
}
