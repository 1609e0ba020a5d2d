package compiler

import (
	"errors"
	"fmt"

	"github.com/chiptrack/chiptrack"
)

var (
	ErrUnsupportedVersion = errors.New("unsupported encoding version")
	ErrTruncated          = errors.New("encoded song is truncated")
)

// reader consumes the encoded song front to back. The first read past the
// end sets err and every read after that returns zeros.
type reader struct {
	b   []byte
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.b) < n {
		r.err = ErrTruncated
		return nil
	}
	ret := r.b[:n]
	r.b = r.b[n:]
	return ret
}

func (r *reader) u8() int {
	if b := r.take(1); b != nil {
		return int(b[0])
	}
	return 0
}

func (r *reader) u16() int {
	if b := r.take(2); b != nil {
		return int(b[0]) | int(b[1])<<8
	}
	return 0
}

// DecodeSong parses a song encoded with EncodeSong. Each track is placed at
// its id; ids with no encoded track (tracks that had no notes) become empty
// melodic tracks and an id appearing twice is an error. Optional envelopes and LFOs that were encoded as all zeros
// are decoded as missing.
func DecodeSong(b []byte) (*chiptrack.Song, error) {
	r := &reader{b: b}
	if version := r.u8(); r.err == nil && version != EncodingVersion {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedVersion, version)
	}
	song := &chiptrack.Song{
		BeatsPerMinute:  r.u16(),
		BeatsPerMeasure: r.u8(),
		TicksPerBeat:    r.u8(),
		Measures:        r.u8(),
	}
	trackCount := r.u8()
	if r.err != nil {
		return nil, r.err
	}
	seen := make(map[int]bool, trackCount)
	for i := 0; i < trackCount; i++ {
		id, track, err := decodeTrack(r)
		if err != nil {
			return nil, fmt.Errorf("track %v: %w", i, err)
		}
		if seen[id] {
			return nil, fmt.Errorf("track %v: id %v is used by more than one track", i, id)
		}
		seen[id] = true
		for len(song.Tracks) <= id {
			song.Tracks = append(song.Tracks, chiptrack.Track{})
		}
		song.Tracks[id] = track
	}
	return song, nil
}

func decodeTrack(r *reader) (int, chiptrack.Track, error) {
	var track chiptrack.Track
	id := r.u8()
	flags := r.u8()
	sub := &reader{b: r.take(r.u16())}
	if r.err != nil {
		return 0, track, r.err
	}
	switch flags {
	case FlagMelodic:
		track.Instrument = decodeInstrument(sub)
	case FlagDrum:
		for len(sub.b) > 0 && sub.err == nil {
			track.Drums = append(track.Drums, decodeDrumInstrument(sub))
		}
	default:
		return 0, track, fmt.Errorf("unknown track flags %v", flags)
	}
	if sub.err != nil {
		return 0, track, sub.err
	}
	notes := &reader{b: r.take(r.u16())}
	if r.err != nil {
		return 0, track, r.err
	}
	for len(notes.b) > 0 && notes.err == nil {
		e := chiptrack.NoteEvent{StartTick: notes.u16(), EndTick: notes.u16()}
		count := notes.u8()
		for _, p := range notes.take(count) {
			e.Notes = append(e.Notes, int(p))
		}
		track.Notes = append(track.Notes, e)
	}
	return id, track, notes.err
}

func decodeInstrument(r *reader) chiptrack.Instrument {
	instr := chiptrack.Instrument{Waveform: r.u8(), AmpEnvelope: decodeEnvelope(r)}
	if env := decodeEnvelope(r); env != (chiptrack.Envelope{}) {
		instr.PitchEnvelope = chiptrack.Some(env)
	}
	if lfo := (chiptrack.LFO{Frequency: r.u8(), Amplitude: r.u16()}); lfo != (chiptrack.LFO{}) {
		instr.AmpLFO = chiptrack.Some(lfo)
	}
	if lfo := (chiptrack.LFO{Frequency: r.u8(), Amplitude: r.u16()}); lfo != (chiptrack.LFO{}) {
		instr.PitchLFO = chiptrack.Some(lfo)
	}
	r.u8() // padding
	return instr
}

func decodeEnvelope(r *reader) chiptrack.Envelope {
	return chiptrack.Envelope{
		Attack:    r.u16(),
		Decay:     r.u16(),
		Sustain:   r.u16(),
		Release:   r.u16(),
		Amplitude: r.u16(),
	}
}

func decodeDrumInstrument(r *reader) chiptrack.DrumInstrument {
	count := r.u8()
	drum := chiptrack.DrumInstrument{StartFrequency: r.u16(), StartVolume: r.u16()}
	for i := 0; i < count && r.err == nil; i++ {
		drum.Steps = append(drum.Steps, chiptrack.DrumSoundStep{
			Waveform:  r.u8(),
			Frequency: r.u16(),
			Volume:    r.u16(),
			Duration:  r.u16(),
		})
	}
	return drum
}
