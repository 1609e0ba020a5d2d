package compiler

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/chiptrack/chiptrack"
)

// EncodingVersion is the only version of the binary song format. It is the
// first byte of every encoded song.
const EncodingVersion = 0

// Sizes of the fixed size parts of the binary format, in bytes.
const (
	SongHeaderSize      = 7
	TrackHeaderSize     = 4
	InstrumentSize      = 28
	DrumHeaderSize      = 5
	DrumStepSize        = 7
	NoteEventHeaderSize = 5
)

// Track flags
const (
	FlagMelodic = 0
	FlagDrum    = 1
)

var errBlockTooLong = errors.New("block does not fit in 65535 bytes")

// EncodeSong encodes the song into the compact binary format read by the
// playback runtime. Tracks without notes are left out; the remaining tracks
// keep their index in song.Tracks as their id. The song is validated first
// and nothing is encoded if it's invalid.
func EncodeSong(song *chiptrack.Song) ([]byte, error) {
	if err := song.Validate(); err != nil {
		return nil, fmt.Errorf("invalid song: %w", err)
	}
	out := make([]byte, SongHeaderSize)
	out[0] = EncodingVersion
	put16(out[1:], song.BeatsPerMinute)
	out[3] = byte(song.BeatsPerMeasure)
	out[4] = byte(song.TicksPerBeat)
	out[5] = byte(song.Measures)
	trackCount := 0
	for i := range song.Tracks {
		t := &song.Tracks[i]
		if len(t.Notes) == 0 {
			continue
		}
		var err error
		if out, err = appendTrack(out, t, i); err != nil {
			return nil, fmt.Errorf("track %v: %w", i, err)
		}
		trackCount++
	}
	out[6] = byte(trackCount)
	return out, nil
}

// EncodeSongToHex encodes the song and returns it as a hex`...` literal, the
// way binary data is embedded in MakeCode sources.
func EncodeSongToHex(song *chiptrack.Song) (string, error) {
	b, err := EncodeSong(song)
	if err != nil {
		return "", err
	}
	return "hex`" + hex.EncodeToString(b) + "`", nil
}

func appendTrack(out []byte, track *chiptrack.Track, id int) ([]byte, error) {
	var sub []byte
	flags := byte(FlagMelodic)
	if track.IsDrumTrack() {
		flags = FlagDrum
		for i := range track.Drums {
			sub = appendDrumInstrument(sub, &track.Drums[i])
		}
	} else {
		sub = appendInstrument(sub, &track.Instrument)
	}
	var notes []byte
	for i := range track.Notes {
		notes = appendNoteEvent(notes, &track.Notes[i])
	}
	if len(sub) > 65535 || len(notes) > 65535 {
		return nil, errBlockTooLong
	}
	out = append(out, byte(id), flags, 0, 0)
	put16(out[len(out)-2:], len(sub))
	out = append(out, sub...)
	out = append16(out, len(notes))
	return append(out, notes...), nil
}

// appendInstrument writes the 28 byte instrument block. Missing optional
// envelopes and LFOs are written as zeros.
func appendInstrument(out []byte, instr *chiptrack.Instrument) []byte {
	pitchEnv := instr.PitchEnvelope.Or(chiptrack.Envelope{})
	ampLFO := instr.AmpLFO.Or(chiptrack.LFO{})
	pitchLFO := instr.PitchLFO.Or(chiptrack.LFO{})
	out = append(out, byte(instr.Waveform))
	out = appendEnvelope(out, &instr.AmpEnvelope)
	out = appendEnvelope(out, &pitchEnv)
	out = append(out, byte(ampLFO.Frequency))
	out = append16(out, ampLFO.Amplitude)
	out = append(out, byte(pitchLFO.Frequency))
	out = append16(out, pitchLFO.Amplitude)
	return append(out, 0) // padding
}

func appendEnvelope(out []byte, env *chiptrack.Envelope) []byte {
	out = append16(out, env.Attack)
	out = append16(out, env.Decay)
	out = append16(out, env.Sustain)
	out = append16(out, env.Release)
	return append16(out, env.Amplitude)
}

func appendDrumInstrument(out []byte, drum *chiptrack.DrumInstrument) []byte {
	out = append(out, byte(len(drum.Steps)))
	out = append16(out, drum.StartFrequency)
	out = append16(out, drum.StartVolume)
	for _, s := range drum.Steps {
		out = append(out, byte(s.Waveform))
		out = append16(out, s.Frequency)
		out = append16(out, s.Volume)
		out = append16(out, s.Duration)
	}
	return out
}

func appendNoteEvent(out []byte, e *chiptrack.NoteEvent) []byte {
	out = append16(out, e.StartTick)
	out = append16(out, e.EndTick)
	out = append(out, byte(len(e.Notes)))
	for _, n := range e.Notes {
		out = append(out, byte(n))
	}
	return out
}

// 16-bit fields are little endian, independent of the host byte order
func append16(out []byte, v int) []byte {
	return append(out, byte(v&255), byte(v>>8&255))
}

func put16(b []byte, v int) {
	b[0] = byte(v & 255)
	b[1] = byte(v >> 8 & 255)
}
