// Package gomidi imports Standard MIDI Files as songs.
package gomidi

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/chiptrack/chiptrack"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type (
	// ImportOptions control how a MIDI file is mapped to a song.
	ImportOptions struct {
		// TicksPerBeat of the resulting song. The MIDI ticks are rescaled and
		// rounded to this resolution.
		TicksPerBeat int
		// Instrument is used for all melodic tracks.
		Instrument chiptrack.Instrument
		// Drums is the drum kit used for the percussion channel (channel 10).
		// If empty, the percussion channel is imported as a melodic track.
		Drums []chiptrack.DrumInstrument
	}

	note struct {
		pitch      int
		start, end int
	}
)

// PercussionChannel is the zero based MIDI channel reserved for percussion.
const PercussionChannel = 9

const defaultBPM = 120

// General MIDI percussion keys mapped to the order of the sounds in the
// built-in drum kits: kick, snare, closed hat, open hat.
var gmDrumIndex = map[int]int{
	35: 0, 36: 0,
	37: 1, 38: 1, 39: 1, 40: 1,
	42: 2, 44: 2,
	46: 3, 49: 3, 51: 3,
}

// ImportSMF reads a Standard MIDI File and converts it into a song with one
// track per MIDI channel, ordered by channel number. Notes of a channel that
// start and end on the same ticks are merged into a single note event. The
// first tempo and time signature events set the tempo and meter of the song.
func ImportSMF(r io.Reader, opts ImportOptions) (chiptrack.Song, error) {
	if opts.TicksPerBeat < 1 {
		return chiptrack.Song{}, errors.New("TicksPerBeat should be positive")
	}
	s, err := smf.ReadFrom(r)
	if err != nil {
		return chiptrack.Song{}, fmt.Errorf("could not read MIDI file: %w", err)
	}
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return chiptrack.Song{}, errors.New("only MIDI files with metric time format are supported")
	}
	resolution := float64(ticks.Resolution())
	toSongTicks := func(t int64) int {
		return int(math.Round(float64(t) * float64(opts.TicksPerBeat) / resolution))
	}
	song := chiptrack.Song{BeatsPerMeasure: 4, TicksPerBeat: opts.TicksPerBeat}
	var bpm float64
	meterSet := false
	channels := map[int][]note{}
	lastTick := 0
	for _, track := range s.Tracks {
		var abs int64
		started := map[[2]uint8]int{}
		for _, ev := range track {
			abs += int64(ev.Delta)
			var channel, key, velocity, num, denom uint8
			var tempo float64
			msg := midi.Message(ev.Message)
			switch {
			case ev.Message.GetMetaTempo(&tempo):
				if bpm == 0 {
					bpm = tempo
				}
			case ev.Message.GetMetaMeter(&num, &denom):
				if !meterSet && num > 0 {
					song.BeatsPerMeasure = int(num)
					meterSet = true
				}
			case msg.GetNoteStart(&channel, &key, &velocity):
				started[[2]uint8{channel, key}] = toSongTicks(abs)
			case msg.GetNoteEnd(&channel, &key):
				k := [2]uint8{channel, key}
				start, ok := started[k]
				if !ok {
					continue
				}
				delete(started, k)
				end := max(toSongTicks(abs), start+1)
				channels[int(channel)] = append(channels[int(channel)], note{pitch: int(key), start: start, end: end})
				lastTick = max(lastTick, end)
			}
		}
	}
	if bpm == 0 {
		bpm = defaultBPM
	}
	song.BeatsPerMinute = int(math.Round(bpm))
	ticksPerMeasure := song.BeatsPerMeasure * song.TicksPerBeat
	song.Measures = max((lastTick+ticksPerMeasure-1)/ticksPerMeasure, 1)
	keys := make([]int, 0, len(channels))
	for k := range channels {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, ch := range keys {
		var track chiptrack.Track
		notes := channels[ch]
		if ch == PercussionChannel && len(opts.Drums) > 0 {
			track.Drums = make([]chiptrack.DrumInstrument, len(opts.Drums))
			for i := range opts.Drums {
				track.Drums[i] = opts.Drums[i].Copy()
			}
			for i := range notes {
				notes[i].pitch = drumIndex(notes[i].pitch, len(opts.Drums))
			}
		} else {
			track.Instrument = opts.Instrument.Copy()
		}
		track.Notes = mergeNotes(notes)
		song.Tracks = append(song.Tracks, track)
	}
	if err := song.Validate(); err != nil {
		return song, fmt.Errorf("imported song is not valid: %w", err)
	}
	return song, nil
}

func drumIndex(key, count int) int {
	if i, ok := gmDrumIndex[key]; ok && i < count {
		return i
	}
	return key % count
}

// mergeNotes turns the notes into note events ordered by start tick, with
// notes sharing both start and end ticks as chords.
func mergeNotes(notes []note) []chiptrack.NoteEvent {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].start != notes[j].start {
			return notes[i].start < notes[j].start
		}
		return notes[i].end < notes[j].end
	})
	var ret []chiptrack.NoteEvent
	for _, n := range notes {
		if l := len(ret) - 1; l >= 0 && ret[l].StartTick == n.start && ret[l].EndTick == n.end {
			if !ret[l].Contains(n.pitch) {
				ret[l].Notes = append(ret[l].Notes, n.pitch)
			}
			continue
		}
		ret = append(ret, chiptrack.NoteEvent{Notes: []int{n.pitch}, StartTick: n.start, EndTick: n.end})
	}
	return ret
}
