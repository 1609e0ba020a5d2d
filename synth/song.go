package synth

import (
	"context"
	"fmt"
	"sort"

	"github.com/chiptrack/chiptrack"
	"golang.org/x/sync/errgroup"
)

// Sound is the rendered segment stream of a single pitch of a note event,
// together with the time it should start playing.
type Sound struct {
	Track    int
	StartMs  float64
	Pitch    int
	Segments []byte
}

// RenderSong renders every note of every track of the song. Tracks are
// rendered concurrently; the returned sounds are ordered by start time and
// then by track. Each pitch of a chord becomes a separate Sound.
func RenderSong(ctx context.Context, song *chiptrack.Song, volume int) ([]Sound, error) {
	if err := song.Validate(); err != nil {
		return nil, err
	}
	results := make([][]Sound, len(song.Tracks))
	g, ctx := errgroup.WithContext(ctx)
	for i := range song.Tracks {
		i := i
		g.Go(func() error {
			sounds, err := renderTrack(ctx, song, i, volume)
			if err != nil {
				return fmt.Errorf("track %v: %w", i, err)
			}
			results[i] = sounds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var ret []Sound
	for _, r := range results {
		ret = append(ret, r...)
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].StartMs != ret[j].StartMs {
			return ret[i].StartMs < ret[j].StartMs
		}
		return ret[i].Track < ret[j].Track
	})
	return ret, nil
}

func renderTrack(ctx context.Context, song *chiptrack.Song, index, volume int) ([]Sound, error) {
	track := &song.Tracks[index]
	var ret []Sound
	for _, e := range track.Notes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := song.TickToMs(e.StartTick)
		gate := song.TickToMs(e.EndTick - e.StartTick)
		for _, pitch := range e.Notes {
			var b []byte
			var err error
			if track.IsDrumTrack() {
				b, err = RenderDrumInstrument(track.Drums[pitch], volume)
			} else {
				b, err = RenderInstrument(track.Instrument, chiptrack.NoteFrequency(pitch), gate, volume)
			}
			if err != nil {
				return nil, fmt.Errorf("note at tick %v: %w", e.StartTick, err)
			}
			ret = append(ret, Sound{Track: index, StartMs: start, Pitch: pitch, Segments: b})
		}
	}
	return ret, nil
}
