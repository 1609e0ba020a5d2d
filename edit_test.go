package chiptrack_test

import (
	"reflect"
	"testing"

	"github.com/chiptrack/chiptrack"
)

func TestAddNote(t *testing.T) {
	song := testSong()
	s, err := song.AddNote(0, 62, 4, 6)
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	expected := []chiptrack.NoteEvent{
		{Notes: []int{60}, StartTick: 0, EndTick: 8},
		{Notes: []int{62}, StartTick: 4, EndTick: 6},
		{Notes: []int{64, 67}, StartTick: 8, EndTick: 16},
	}
	if !reflect.DeepEqual(s.Tracks[0].Notes, expected) {
		t.Fatalf("got %v, expected %v", s.Tracks[0].Notes, expected)
	}
	if len(song.Tracks[0].Notes) != 2 {
		t.Fatalf("AddNote modified the original song")
	}
	s, err = s.AddNote(0, 71, 8, 100)
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	chord := chiptrack.NoteEvent{Notes: []int{64, 67, 71}, StartTick: 8, EndTick: 16}
	if !reflect.DeepEqual(s.Tracks[0].Notes[2], chord) {
		t.Fatalf("got %v, expected %v", s.Tracks[0].Notes[2], chord)
	}
	if _, err := song.AddNote(5, 60, 0, 1); err == nil {
		t.Fatalf("expected an error for a missing track")
	}
}

func TestRemoveNote(t *testing.T) {
	song := testSong()
	s, err := song.RemoveNote(0, 64, 8)
	if err != nil {
		t.Fatalf("RemoveNote failed: %v", err)
	}
	if !reflect.DeepEqual(s.Tracks[0].Notes[1].Notes, []int{67}) {
		t.Fatalf("got %v, expected [67]", s.Tracks[0].Notes[1].Notes)
	}
	s, err = s.RemoveNote(0, 60, 0)
	if err != nil {
		t.Fatalf("RemoveNote failed: %v", err)
	}
	expected := []chiptrack.NoteEvent{{Notes: []int{67}, StartTick: 8, EndTick: 16}}
	if !reflect.DeepEqual(s.Tracks[0].Notes, expected) {
		t.Fatalf("got %v, expected %v", s.Tracks[0].Notes, expected)
	}
	if !reflect.DeepEqual(song, testSong()) {
		t.Fatalf("RemoveNote modified the original song")
	}
}

func TestSetNoteEventEnd(t *testing.T) {
	song := testSong()
	s, err := song.SetNoteEventEnd(0, 8, 12)
	if err != nil {
		t.Fatalf("SetNoteEventEnd failed: %v", err)
	}
	if s.Tracks[0].Notes[1].EndTick != 12 {
		t.Fatalf("got end %v, expected 12", s.Tracks[0].Notes[1].EndTick)
	}
	s, err = song.SetNoteEventEnd(0, 8, 3)
	if err != nil {
		t.Fatalf("SetNoteEventEnd failed: %v", err)
	}
	if s.Tracks[0].Notes[1].EndTick != 9 {
		t.Fatalf("got end %v, expected 9", s.Tracks[0].Notes[1].EndTick)
	}
	if _, err := song.SetNoteEventEnd(0, 5, 10); err == nil {
		t.Fatalf("expected an error when no event starts at the tick")
	}
}

func TestPreviousNoteEvent(t *testing.T) {
	song := testSong()
	for _, c := range []struct{ tick, expected int }{{0, 0}, {7, 0}, {8, 1}, {100, 1}, {-1, -1}} {
		if got := song.PreviousNoteEvent(0, c.tick); got != c.expected {
			t.Fatalf("tick %v: got %v, expected %v", c.tick, got, c.expected)
		}
	}
	if got := song.PreviousNoteEvent(1, 10); got != -1 {
		t.Fatalf("empty track: got %v, expected -1", got)
	}
}
