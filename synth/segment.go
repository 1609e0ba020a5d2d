package synth

import "math"

type (
	// Segment is one command for the tone generator: play Waveform for
	// Duration milliseconds, ramping linearly from Frequency to EndFrequency
	// and from StartVolume to EndVolume. The volumes are stored already scaled
	// to the range of the tone generator.
	Segment struct {
		Waveform     byte
		Frequency    uint16
		Duration     uint16
		StartVolume  uint16
		EndVolume    uint16
		EndFrequency uint16
	}
)

// SegmentSize is the size of an encoded Segment in bytes. A segment with zero
// duration marks the end of a segment stream.
const SegmentSize = 12

// FadeDuration is the length of the fade to silence appended to every
// rendered sound, in milliseconds.
const FadeDuration = 10

// newSegment builds a segment from a level in the range [0, volume] and
// frequencies in Hz. The level is scaled with (level * 255) >> 6, as expected
// by the tone generator. Values that do not fit 16 bits saturate.
func newSegment(waveform int, ms int, startLevel, endLevel float64, hz, endHz int) Segment {
	return Segment{
		Waveform:     byte(waveform),
		Frequency:    saturate(hz),
		Duration:     saturate(ms),
		StartVolume:  saturate(int(startLevel*255) >> 6),
		EndVolume:    saturate(int(endLevel*255) >> 6),
		EndFrequency: saturate(endHz),
	}
}

func saturate(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

// put writes the segment into the first SegmentSize bytes of b.
func (s Segment) put(b []byte) {
	b[0] = s.Waveform
	b[1] = 0
	putUint16(b[2:], s.Frequency)
	putUint16(b[4:], s.Duration)
	putUint16(b[6:], s.StartVolume)
	putUint16(b[8:], s.EndVolume)
	putUint16(b[10:], s.EndFrequency)
}

// MarshalBinary returns the SegmentSize byte encoding of the segment.
func (s Segment) MarshalBinary() ([]byte, error) {
	b := make([]byte, SegmentSize)
	s.put(b)
	return b, nil
}

// DecodeSegments parses a segment stream, stopping at the first segment with
// zero duration or when there's not enough bytes left for a whole segment.
func DecodeSegments(b []byte) []Segment {
	var ret []Segment
	for ; len(b) >= SegmentSize; b = b[SegmentSize:] {
		s := Segment{
			Waveform:     b[0],
			Frequency:    getUint16(b[2:]),
			Duration:     getUint16(b[4:]),
			StartVolume:  getUint16(b[6:]),
			EndVolume:    getUint16(b[8:]),
			EndFrequency: getUint16(b[10:]),
		}
		if s.Duration == 0 {
			break
		}
		ret = append(ret, s)
	}
	return ret
}

// putUint16 stores v little endian, independent of the host byte order.
func putUint16(b []byte, v uint16) {
	b[0] = byte(v & 255)
	b[1] = byte(v >> 8)
}

func getUint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}
