package chiptrack_test

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"github.com/chiptrack/chiptrack"
	yamlv2 "gopkg.in/yaml.v2"
	"gopkg.in/yaml.v3"
)

func testSong() chiptrack.Song {
	return chiptrack.Song{
		Measures:        2,
		BeatsPerMeasure: 4,
		BeatsPerMinute:  120,
		TicksPerBeat:    8,
		Tracks: []chiptrack.Track{
			{Instrument: instrumentValue, Notes: []chiptrack.NoteEvent{
				{Notes: []int{60}, StartTick: 0, EndTick: 8},
				{Notes: []int{64, 67}, StartTick: 8, EndTick: 16},
			}},
			{Drums: []chiptrack.DrumInstrument{{StartVolume: 1024, Steps: []chiptrack.DrumSoundStep{{Waveform: 5, Duration: 50}}}}},
		},
	}
}

func TestSongValidate(t *testing.T) {
	song := testSong()
	if err := song.Validate(); err != nil {
		t.Fatalf("valid song failed validation: %v", err)
	}
	for _, c := range []struct {
		name   string
		modify func(s *chiptrack.Song)
	}{
		{"zero tempo", func(s *chiptrack.Song) { s.BeatsPerMinute = 0 }},
		{"tempo too big", func(s *chiptrack.Song) { s.BeatsPerMinute = 65536 }},
		{"too many ticks per beat", func(s *chiptrack.Song) { s.TicksPerBeat = 256 }},
		{"end before start", func(s *chiptrack.Song) { s.Tracks[0].Notes[0].EndTick = -1 }},
		{"pitch too high", func(s *chiptrack.Song) { s.Tracks[0].Notes[0].Notes = []int{256} }},
		{"missing drum", func(s *chiptrack.Song) {
			s.Tracks[1].Notes = []chiptrack.NoteEvent{{Notes: []int{1}, StartTick: 0, EndTick: 1}}
		}},
		{"drum without steps", func(s *chiptrack.Song) { s.Tracks[1].Drums[0].Steps = nil }},
		{"negative release", func(s *chiptrack.Song) { s.Tracks[0].Instrument.AmpEnvelope.Release = -1 }},
		{"sustain over 1024", func(s *chiptrack.Song) { s.Tracks[0].Instrument.AmpEnvelope.Sustain = 1025 }},
		{"LFO frequency too big", func(s *chiptrack.Song) {
			s.Tracks[0].Instrument.AmpLFO = chiptrack.Some(chiptrack.LFO{Frequency: 256, Amplitude: 1})
		}},
	} {
		s := testSong()
		c.modify(&s)
		if err := s.Validate(); err == nil {
			t.Fatalf("%v: expected a validation error", c.name)
		}
	}
}

func TestInstrumentOfEmptyTrackIsNotValidated(t *testing.T) {
	song := testSong()
	song.Tracks = append(song.Tracks, chiptrack.Track{Instrument: chiptrack.Instrument{Waveform: 1000}})
	if err := song.Validate(); err != nil {
		t.Fatalf("instrument of a track without notes should not matter: %v", err)
	}
}

const songHeaderYaml = `measures: 1
beatspermeasure: 4
beatsperminute: 120
ticksperbeat: 8
`

func TestMissingAmpEnvelopeIsRejected(t *testing.T) {
	for _, c := range []struct {
		name   string
		decode func(*chiptrack.Song) error
	}{
		{"yaml.v3 without envelope", func(s *chiptrack.Song) error {
			return yaml.Unmarshal([]byte(songHeaderYaml+`tracks:
  - instrument: {waveform: 1}
    notes: [{notes: [60], starttick: 0, endtick: 8}]
`), s)
		}},
		{"yaml.v3 without instrument", func(s *chiptrack.Song) error {
			return yaml.Unmarshal([]byte(songHeaderYaml+`tracks:
  - notes: [{notes: [60], starttick: 0, endtick: 8}]
`), s)
		}},
		{"yaml.v2 without envelope", func(s *chiptrack.Song) error {
			return yamlv2.UnmarshalStrict([]byte(songHeaderYaml+`tracks:
  - instrument: {waveform: 1}
    notes: [{notes: [60], starttick: 0, endtick: 8}]
`), s)
		}},
		{"json without envelope", func(s *chiptrack.Song) error {
			return json.Unmarshal([]byte(`{"Measures": 1, "BeatsPerMeasure": 4, "BeatsPerMinute": 120, "TicksPerBeat": 8,
"Tracks": [{"Instrument": {"Waveform": 1}, "Notes": [{"Notes": [60], "StartTick": 0, "EndTick": 8}]}]}`), s)
		}},
		{"json with null envelope", func(s *chiptrack.Song) error {
			return json.Unmarshal([]byte(`{"Measures": 1, "BeatsPerMeasure": 4, "BeatsPerMinute": 120, "TicksPerBeat": 8,
"Tracks": [{"Instrument": {"Waveform": 1, "AmpEnvelope": null}, "Notes": [{"Notes": [60], "StartTick": 0, "EndTick": 8}]}]}`), s)
		}},
	} {
		var song chiptrack.Song
		if err := c.decode(&song); err != nil {
			t.Fatalf("%v: could not decode: %v", c.name, err)
		}
		if err := song.Validate(); err == nil {
			t.Fatalf("%v: expected Validate to fail for a missing amplitude envelope", c.name)
		}
	}
}

func TestDecodedZeroAmpEnvelopeIsValid(t *testing.T) {
	var song chiptrack.Song
	doc := songHeaderYaml + `tracks:
  - instrument:
      waveform: 1
      ampenvelope: {attack: 0, decay: 0, sustain: 0, release: 0, amplitude: 0}
    notes: [{notes: [60], starttick: 0, endtick: 8}]
  - drums: [{startvolume: 1024, steps: [{waveform: 5, duration: 50}]}]
    notes: [{notes: [0], starttick: 0, endtick: 8}]
`
	if err := yaml.Unmarshal([]byte(doc), &song); err != nil {
		t.Fatalf("could not decode: %v", err)
	}
	if err := song.Validate(); err != nil {
		t.Fatalf("an explicit envelope and a drum track should be valid: %v", err)
	}
	expected := chiptrack.Track{
		Drums: []chiptrack.DrumInstrument{{StartVolume: 1024, Steps: []chiptrack.DrumSoundStep{{Waveform: 5, Duration: 50}}}},
		Notes: []chiptrack.NoteEvent{{Notes: []int{0}, StartTick: 0, EndTick: 8}},
	}
	if !reflect.DeepEqual(song.Tracks[1], expected) {
		t.Fatalf("got %+v, expected %+v", song.Tracks[1], expected)
	}
}

func TestSongCopy(t *testing.T) {
	song := testSong()
	c := song.Copy()
	if !reflect.DeepEqual(c, song) {
		t.Fatalf("copy differs from the original")
	}
	c.Tracks[0].Notes[1].Notes[0] = 1
	c.Tracks[1].Drums[0].Steps[0].Duration = 1
	if song.Tracks[0].Notes[1].Notes[0] != 64 || song.Tracks[1].Drums[0].Steps[0].Duration != 50 {
		t.Fatalf("modifying the copy changed the original")
	}
}

func TestTiming(t *testing.T) {
	song := testSong()
	if ms := song.TickToMs(8); ms != 500 {
		t.Fatalf("got %v ms, expected 500", ms)
	}
	if l := song.LengthInTicks(); l != 64 {
		t.Fatalf("got %v ticks, expected 64", l)
	}
	if f := chiptrack.NoteFrequency(69); f != 440 {
		t.Fatalf("got %v Hz, expected 440", f)
	}
	if f := chiptrack.NoteFrequency(81); math.Abs(f-880) > 1e-9 {
		t.Fatalf("got %v Hz, expected 880", f)
	}
}

func TestGridTicks(t *testing.T) {
	for _, c := range []struct {
		res      string
		expected int
	}{{"1/4", 8}, {"1/8", 4}, {"1/16", 2}, {"1/32", 1}} {
		got, err := chiptrack.GridTicks(c.res, 8)
		if err != nil || got != c.expected {
			t.Fatalf("%v: got %v %v, expected %v", c.res, got, err, c.expected)
		}
	}
	if _, err := chiptrack.GridTicks("1/3", 8); err == nil {
		t.Fatalf("expected an error for an unknown resolution")
	}
	if got, err := chiptrack.GridTicks("1/32", 4); err == nil {
		t.Fatalf("got %v, expected an error for a cell shorter than one tick", got)
	}
}
