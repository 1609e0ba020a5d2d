package chiptrack

import (
	"fmt"
	"math"
	"sort"
)

// NoteFrequency returns the frequency in Hz of a pitch code, using equal
// temperament with pitch 69 being A4 = 440 Hz.
func NoteFrequency(pitch int) float64 {
	return 440 * math.Pow(2, float64(pitch-69)/12)
}

// GridTicks returns the number of ticks in one cell of the editor grid for the
// given resolution, which is one of "1/4", "1/8", "1/16" or "1/32" (note
// lengths relative to a whole note, with a beat being a quarter note). It is
// an error if a cell would be shorter than one tick.
func GridTicks(resolution string, ticksPerBeat int) (int, error) {
	var div int
	switch resolution {
	case "1/4":
		div = 1
	case "1/8":
		div = 2
	case "1/16":
		div = 4
	case "1/32":
		div = 8
	default:
		return 0, fmt.Errorf("unknown grid resolution %q", resolution)
	}
	ret := ticksPerBeat / div
	if ret <= 0 {
		return 0, fmt.Errorf("grid resolution %v is finer than one tick at %v ticks per beat", resolution, ticksPerBeat)
	}
	return ret, nil
}

// PreviousNoteEvent returns the index of the note event in the track that
// starts at or closest before tick, or -1 if there is none.
func (s *Song) PreviousNoteEvent(track, tick int) int {
	if track < 0 || track >= len(s.Tracks) {
		return -1
	}
	ret := -1
	for i, e := range s.Tracks[track].Notes {
		if e.StartTick > tick {
			continue
		}
		if ret == -1 || e.StartTick >= s.Tracks[track].Notes[ret].StartTick {
			ret = i
		}
	}
	return ret
}

// AddNote returns a copy of the song with pitch added to the track. If an
// event already starts at startTick, the pitch joins that chord (keeping its
// end tick); otherwise a new event is inserted, keeping the notes ordered by
// start tick.
func (s *Song) AddNote(track, pitch, startTick, endTick int) (Song, error) {
	if track < 0 || track >= len(s.Tracks) {
		return Song{}, fmt.Errorf("track %v does not exist", track)
	}
	ret := s.Copy()
	t := &ret.Tracks[track]
	for i := range t.Notes {
		if t.Notes[i].StartTick == startTick {
			if !t.Notes[i].Contains(pitch) {
				t.Notes[i].Notes = append(t.Notes[i].Notes, pitch)
			}
			return ret, nil
		}
	}
	t.Notes = append(t.Notes, NoteEvent{Notes: []int{pitch}, StartTick: startTick, EndTick: endTick})
	sort.SliceStable(t.Notes, func(i, j int) bool { return t.Notes[i].StartTick < t.Notes[j].StartTick })
	return ret, nil
}

// RemoveNote returns a copy of the song with pitch removed from the event
// starting at startTick. Events left without any pitches are removed.
func (s *Song) RemoveNote(track, pitch, startTick int) (Song, error) {
	if track < 0 || track >= len(s.Tracks) {
		return Song{}, fmt.Errorf("track %v does not exist", track)
	}
	ret := s.Copy()
	t := &ret.Tracks[track]
	notes := t.Notes[:0]
	for _, e := range t.Notes {
		if e.StartTick == startTick {
			pitches := e.Notes[:0]
			for _, n := range e.Notes {
				if n != pitch {
					pitches = append(pitches, n)
				}
			}
			e.Notes = pitches
			if len(e.Notes) == 0 {
				continue
			}
		}
		notes = append(notes, e)
	}
	t.Notes = notes
	return ret, nil
}

// SetNoteEventEnd returns a copy of the song where the event starting at
// startTick ends at endTick. The end is clamped so that the event lasts at
// least one tick.
func (s *Song) SetNoteEventEnd(track, startTick, endTick int) (Song, error) {
	if track < 0 || track >= len(s.Tracks) {
		return Song{}, fmt.Errorf("track %v does not exist", track)
	}
	ret := s.Copy()
	for i := range ret.Tracks[track].Notes {
		e := &ret.Tracks[track].Notes[i]
		if e.StartTick == startTick {
			e.EndTick = max(endTick, startTick+1)
			return ret, nil
		}
	}
	return Song{}, fmt.Errorf("track %v has no note event starting at tick %v", track, startTick)
}
