package synth_test

import (
	"reflect"
	"testing"

	"github.com/chiptrack/chiptrack"
	"github.com/chiptrack/chiptrack/synth"
	"github.com/davecgh/go-spew/spew"
)

func TestRenderInstrument(t *testing.T) {
	instr := chiptrack.Instrument{Waveform: chiptrack.WaveSquare50, AmpEnvelope: testEnvelope}
	b, err := synth.RenderInstrument(instr, 440, 100, 255)
	if err != nil {
		t.Fatalf("RenderInstrument failed: %v", err)
	}
	if len(b) != 6*synth.SegmentSize {
		t.Fatalf("buffer length mismatch, got %v, expected %v", len(b), 6*synth.SegmentSize)
	}
	got := synth.DecodeSegments(b)
	expected := []synth.Segment{
		{Waveform: 15, Frequency: 440, Duration: 10, StartVolume: 0, EndVolume: 1016, EndFrequency: 440},
		{Waveform: 15, Frequency: 440, Duration: 20, StartVolume: 1016, EndVolume: 506, EndFrequency: 440},
		{Waveform: 15, Frequency: 440, Duration: 70, StartVolume: 506, EndVolume: 506, EndFrequency: 440},
		{Waveform: 15, Frequency: 440, Duration: 30, StartVolume: 506, EndVolume: 0, EndFrequency: 440},
		{Waveform: 15, Frequency: 440, Duration: 10, StartVolume: 0, EndVolume: 0, EndFrequency: 440},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("got different segments than expected. got: %v expected: %v", spew.Sdump(got), spew.Sdump(expected))
	}
}

func TestRenderInstrumentEndsWithFade(t *testing.T) {
	instr := chiptrack.Instrument{
		Waveform:    chiptrack.WaveTriangle,
		AmpEnvelope: chiptrack.Envelope{Attack: 7, Decay: 13, Sustain: 900, Release: 250, Amplitude: 1024},
		AmpLFO:      chiptrack.Some(chiptrack.LFO{Frequency: 3, Amplitude: 200}),
	}
	for _, gate := range []float64{0, 1, 50, 333} {
		b, err := synth.RenderInstrument(instr, 262, gate, 255)
		if err != nil {
			t.Fatalf("RenderInstrument failed: %v", err)
		}
		segs := synth.DecodeSegments(b)
		if len(segs) == 0 {
			t.Fatalf("gate %v: no segments", gate)
		}
		last := segs[len(segs)-1]
		if last.Duration != synth.FadeDuration || last.EndVolume != 0 {
			t.Fatalf("gate %v: last segment should be a fade, got %+v", gate, last)
		}
	}
}

func TestRenderInstrumentConstantPitch(t *testing.T) {
	instr := chiptrack.Instrument{
		AmpEnvelope: testEnvelope,
		AmpLFO:      chiptrack.Some(chiptrack.LFO{Frequency: 4, Amplitude: 100}),
	}
	b, err := synth.RenderInstrument(instr, 523.25, 400, 255)
	if err != nil {
		t.Fatalf("RenderInstrument failed: %v", err)
	}
	for i, s := range synth.DecodeSegments(b) {
		if s.Frequency != 523 || s.EndFrequency != 523 {
			t.Fatalf("segment %v: got frequencies %v..%v, expected 523", i, s.Frequency, s.EndFrequency)
		}
	}
}

func TestRenderInstrumentCoalescesShortSegments(t *testing.T) {
	instr := chiptrack.Instrument{
		AmpEnvelope: chiptrack.Envelope{Attack: 3, Decay: 20, Sustain: 1024, Amplitude: 1024},
	}
	b, err := synth.RenderInstrument(instr, 440, 100, 255)
	if err != nil {
		t.Fatalf("RenderInstrument failed: %v", err)
	}
	if len(b) != 5*synth.SegmentSize {
		t.Fatalf("buffer length mismatch, got %v, expected %v", len(b), 5*synth.SegmentSize)
	}
	got := synth.DecodeSegments(b)
	expected := []synth.Segment{
		{Frequency: 440, Duration: 23, StartVolume: 0, EndVolume: 1016, EndFrequency: 440},
		{Frequency: 440, Duration: 77, StartVolume: 1016, EndVolume: 1016, EndFrequency: 440},
		{Frequency: 440, Duration: 10, StartVolume: 1016, EndVolume: 0, EndFrequency: 440},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("got different segments than expected. got: %v expected: %v", spew.Sdump(got), spew.Sdump(expected))
	}
	for i, v := range b[3*synth.SegmentSize:] {
		if v != 0 {
			t.Fatalf("byte %v after the last segment should be 0, got %v", i, v)
		}
	}
}

func TestRenderInstrumentHoldsSustainBeforeShortRelease(t *testing.T) {
	instr := chiptrack.Instrument{
		AmpEnvelope: chiptrack.Envelope{Attack: 10, Sustain: 1024, Release: 4, Amplitude: 1024},
	}
	b, err := synth.RenderInstrument(instr, 440, 1000, 255)
	if err != nil {
		t.Fatalf("RenderInstrument failed: %v", err)
	}
	got := synth.DecodeSegments(b)
	expected := []synth.Segment{
		{Frequency: 440, Duration: 10, StartVolume: 0, EndVolume: 1016, EndFrequency: 440},
		{Frequency: 440, Duration: 990, StartVolume: 1016, EndVolume: 1016, EndFrequency: 440},
		{Frequency: 440, Duration: 10, StartVolume: 1016, EndVolume: 0, EndFrequency: 440},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("got different segments than expected. got: %v expected: %v", spew.Sdump(got), spew.Sdump(expected))
	}
	// level half way through the note, interpolated from the segment covering it
	mid := got[1]
	level := int(mid.StartVolume) + (int(mid.EndVolume)-int(mid.StartVolume))*(500-10)/int(mid.Duration)
	if want := int(255*255) >> 6; level != want {
		t.Fatalf("level at 500 ms: got %v, expected %v", level, want)
	}
}

func TestRenderInstrumentRejectsInvalidInput(t *testing.T) {
	valid := chiptrack.Instrument{AmpEnvelope: testEnvelope}
	for _, c := range []struct {
		name  string
		instr chiptrack.Instrument
		freq  float64
		gate  float64
	}{
		{"negative gate", valid, 440, -1},
		{"negative frequency", valid, -440, 100},
		{"too long", valid, 440, 65535},
		{"bad sustain", chiptrack.Instrument{AmpEnvelope: chiptrack.Envelope{Sustain: 2000}}, 440, 100},
		{"negative attack", chiptrack.Instrument{AmpEnvelope: chiptrack.Envelope{Attack: -1}}, 440, 100},
	} {
		if _, err := synth.RenderInstrument(c.instr, c.freq, c.gate, 255); err == nil {
			t.Fatalf("%v: expected an error", c.name)
		}
	}
}

func TestSegmentMarshalBinary(t *testing.T) {
	s := synth.Segment{Waveform: 3, Frequency: 0x1234, Duration: 0x0100, StartVolume: 1, EndVolume: 0xffff, EndFrequency: 0xabcd}
	b, err := s.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	expected := []byte{3, 0, 0x34, 0x12, 0x00, 0x01, 1, 0, 0xff, 0xff, 0xcd, 0xab}
	if !reflect.DeepEqual(b, expected) {
		t.Fatalf("got %v, expected %v", b, expected)
	}
}
