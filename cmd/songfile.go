package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chiptrack/chiptrack"
	"github.com/chiptrack/chiptrack/config"
	"github.com/chiptrack/chiptrack/gomidi"
	"github.com/chiptrack/chiptrack/presets"
	"gopkg.in/yaml.v3"
)

// SongExtensions are the file extensions LoadSong understands.
var SongExtensions = []string{".yml", ".yaml", ".json", ".mid", ".midi"}

// LoadSong reads a song from a .yml, .yaml, .json, .mid or .midi file. MIDI files
// are imported using the instrument, drum kit and ticks per beat of conf.
func LoadSong(filename string, conf config.Config, p *presets.Presets) (chiptrack.Song, error) {
	inputBytes, err := os.ReadFile(filename)
	if err != nil {
		return chiptrack.Song{}, fmt.Errorf("could not read file %v: %v", filename, err)
	}
	var song chiptrack.Song
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mid", ".midi":
		opts := gomidi.ImportOptions{TicksPerBeat: conf.TicksPerBeat}
		instr, ok := p.Instrument(conf.Instrument)
		if !ok {
			return song, fmt.Errorf("instrument preset %q not found", conf.Instrument)
		}
		opts.Instrument = instr
		if conf.DrumKit != "" {
			drums, ok := p.DrumKit(conf.DrumKit)
			if !ok {
				return song, fmt.Errorf("drum kit %q not found", conf.DrumKit)
			}
			opts.Drums = drums
		}
		return gomidi.ImportSMF(bytes.NewReader(inputBytes), opts)
	case ".json":
		if err := json.Unmarshal(inputBytes, &song); err != nil {
			return song, fmt.Errorf("song could not be unmarshaled as .json: %v", err)
		}
	default:
		if err := yaml.Unmarshal(inputBytes, &song); err != nil {
			return song, fmt.Errorf("song could not be unmarshaled as .yml: %v", err)
		}
	}
	return song, nil
}

// ExpandPaths replaces directories in paths with the song files they
// contain.
func ExpandPaths(paths []string) ([]string, error) {
	var ret []string
	for _, param := range paths {
		info, err := os.Stat(param)
		if err != nil || !info.IsDir() {
			ret = append(ret, param)
			continue
		}
		for _, ext := range SongExtensions {
			files, err := filepath.Glob(filepath.Join(param, "*"+ext))
			if err != nil {
				return nil, fmt.Errorf("could not glob the path %v for %v files: %v", param, ext, err)
			}
			ret = append(ret, files...)
		}
	}
	return ret, nil
}
