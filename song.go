package chiptrack

import (
	"encoding/json"
	"errors"
	"fmt"
)

type (
	// Song is the whole arrangement: the tempo and meter of the song and the
	// list of tracks. The index of a track in Tracks is its id, and the order
	// of the tracks is preserved when the song is encoded. Currently, BPM is an
	// integer as the runtime stores it as a 16-bit field.
	Song struct {
		Measures        int
		BeatsPerMeasure int
		BeatsPerMinute  int
		TicksPerBeat    int
		Tracks          []Track
	}

	// Track is either a melodic track, which plays all its notes with a single
	// Instrument, or a drum track, which has a list of drum sounds and every
	// pitch in a note event is an index to that list. The presence of Drums is
	// the sole discriminator: a track with a non-empty Drums list is a drum
	// track and its Instrument is ignored.
	Track struct {
		Instrument Instrument       `yaml:",omitempty"`
		Drums      []DrumInstrument `yaml:",omitempty"`

		// Notes is a list of note events, assumed to be ordered by StartTick.
		// Tracks without any notes are not encoded at all.
		Notes []NoteEvent
	}

	// NoteEvent is a chord of one or more pitches that start and end at the
	// same ticks. An event with a single pitch is just a note.
	NoteEvent struct {
		Notes     []int `yaml:",flow"`
		StartTick int
		EndTick   int
	}
)

// MaxPolyphony is the maximum number of pitches in a single NoteEvent, as the
// count is stored in a single byte.
const MaxPolyphony = 255

// IsDrumTrack tells if the track plays drum sounds instead of an instrument.
func (t *Track) IsDrumTrack() bool {
	return len(t.Drums) > 0
}

// Copy makes a deep copy of a Track.
func (t *Track) Copy() Track {
	var drums []DrumInstrument
	if t.Drums != nil {
		drums = make([]DrumInstrument, len(t.Drums))
		for i, d := range t.Drums {
			drums[i] = d.Copy()
		}
	}
	var notes []NoteEvent
	if t.Notes != nil {
		notes = make([]NoteEvent, len(t.Notes))
		for i, n := range t.Notes {
			notes[i] = n.Copy()
		}
	}
	return Track{Instrument: t.Instrument.Copy(), Drums: drums, Notes: notes}
}

// Copy makes a deep copy of a NoteEvent.
func (e *NoteEvent) Copy() NoteEvent {
	var notes []int
	if e.Notes != nil {
		notes = make([]int, len(e.Notes))
		copy(notes, e.Notes)
	}
	return NoteEvent{Notes: notes, StartTick: e.StartTick, EndTick: e.EndTick}
}

// Contains reports whether the pitch is one of the notes of the event.
func (e *NoteEvent) Contains(pitch int) bool {
	for _, n := range e.Notes {
		if n == pitch {
			return true
		}
	}
	return false
}

// Copy makes a deep copy of a Song.
func (s *Song) Copy() Song {
	var tracks []Track
	if s.Tracks != nil {
		tracks = make([]Track, len(s.Tracks))
		for i, t := range s.Tracks {
			tracks[i] = t.Copy()
		}
	}
	return Song{
		Measures:        s.Measures,
		BeatsPerMeasure: s.BeatsPerMeasure,
		BeatsPerMinute:  s.BeatsPerMinute,
		TicksPerBeat:    s.TicksPerBeat,
		Tracks:          tracks,
	}
}

// LengthInTicks returns the nominal length of the song, i.e. Measures *
// BeatsPerMeasure * TicksPerBeat.
func (s *Song) LengthInTicks() int {
	return s.Measures * s.BeatsPerMeasure * s.TicksPerBeat
}

// TickToMs converts a tick count to milliseconds using the tempo of the song.
// Returns 0 if the tempo is not set.
func (s *Song) TickToMs(ticks int) float64 {
	if divisor := s.BeatsPerMinute * s.TicksPerBeat; divisor > 0 {
		return float64(ticks) * 60000 / float64(divisor)
	}
	return 0
}

// Validate checks that the song can be encoded and rendered: the tempo and
// meter fields are positive and fit the fields of the binary format, there's
// no more than 255 tracks and every track is valid. The first problem found is
// returned.
func (s *Song) Validate() error {
	if s.BeatsPerMinute < 1 || s.BeatsPerMinute > maxUint16 {
		return fmt.Errorf("BeatsPerMinute should be 1 .. %v (was %v)", maxUint16, s.BeatsPerMinute)
	}
	if s.BeatsPerMeasure < 1 || s.BeatsPerMeasure > maxUint8 {
		return fmt.Errorf("BeatsPerMeasure should be 1 .. %v (was %v)", maxUint8, s.BeatsPerMeasure)
	}
	if s.TicksPerBeat < 1 || s.TicksPerBeat > maxUint8 {
		return fmt.Errorf("TicksPerBeat should be 1 .. %v (was %v)", maxUint8, s.TicksPerBeat)
	}
	if s.Measures < 1 || s.Measures > maxUint8 {
		return fmt.Errorf("Measures should be 1 .. %v (was %v)", maxUint8, s.Measures)
	}
	if len(s.Tracks) > maxUint8+1 {
		return errors.New("song contains more than 256 tracks")
	}
	for i := range s.Tracks {
		if err := s.Tracks[i].Validate(); err != nil {
			return fmt.Errorf("track %v: %w", i, err)
		}
	}
	return nil
}

// Validate checks the instrument (or drum sounds) and the note events of the
// track. For drum tracks, every pitch must index an existing drum sound.
func (t *Track) Validate() error {
	if t.IsDrumTrack() {
		if len(t.Drums) > maxUint8+1 {
			return errors.New("track contains more than 256 drum sounds")
		}
		for i := range t.Drums {
			if err := t.Drums[i].Validate(); err != nil {
				return fmt.Errorf("drum %v: %w", i, err)
			}
		}
	} else if len(t.Notes) > 0 {
		if err := t.Instrument.Validate(); err != nil {
			return fmt.Errorf("instrument: %w", err)
		}
	}
	for i := range t.Notes {
		e := &t.Notes[i]
		if err := e.Validate(); err != nil {
			return fmt.Errorf("note event %v: %w", i, err)
		}
		if t.IsDrumTrack() {
			for _, n := range e.Notes {
				if n >= len(t.Drums) {
					return fmt.Errorf("note event %v: drum %v does not exist", i, n)
				}
			}
		}
	}
	return nil
}

// Validate checks that the ticks are in order and fit 16 bits, and that there
// are at most MaxPolyphony pitches, each fitting a byte.
func (e *NoteEvent) Validate() error {
	if e.StartTick < 0 || e.StartTick > maxUint16 {
		return fmt.Errorf("StartTick should be 0 .. %v (was %v)", maxUint16, e.StartTick)
	}
	if e.EndTick < e.StartTick || e.EndTick > maxUint16 {
		return fmt.Errorf("EndTick should be %v .. %v (was %v)", e.StartTick, maxUint16, e.EndTick)
	}
	if len(e.Notes) > MaxPolyphony {
		return fmt.Errorf("more than %v simultaneous notes (was %v)", MaxPolyphony, len(e.Notes))
	}
	for _, n := range e.Notes {
		if n < 0 || n > maxUint8 {
			return fmt.Errorf("pitch should be 0 .. %v (was %v)", maxUint8, n)
		}
	}
	return nil
}

type trackFields struct {
	Instrument *Instrument      `yaml:",omitempty"`
	Drums      []DrumInstrument `yaml:",omitempty"`
	Notes      []NoteEvent
}

// a melodic track decoded without an instrument has no amplitude envelope
func (f *trackFields) track() Track {
	ret := Track{Drums: f.Drums, Notes: f.Notes}
	if f.Instrument != nil {
		ret.Instrument = *f.Instrument
	} else if len(f.Drums) == 0 {
		ret.Instrument.ampEnvelopeMissing = true
	}
	return ret
}

func (t *Track) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var f trackFields
	if err := unmarshal(&f); err != nil {
		return err
	}
	*t = f.track()
	return nil
}

func (t *Track) UnmarshalJSON(data []byte) error {
	var f trackFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*t = f.track()
	return nil
}
