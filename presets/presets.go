// Package presets loads the built-in instrument and drum kit presets and the
// ones the user has saved in the config directory.
package presets

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chiptrack/chiptrack"
	"gopkg.in/yaml.v2"
)

//go:embed presets/*
var presetFS embed.FS

type (
	// Preset is a melodic instrument preset. The name of the instrument is
	// derived from the file name, with underscores replaced by spaces, and
	// Directory is the path of the file under presets/instruments.
	Preset struct {
		Directory string
		User      bool
		Instr     chiptrack.Instrument
	}

	// DrumKit is a named list of drum sounds, meant to be used as the Drums
	// of a drum track.
	DrumKit struct {
		Name  string
		User  bool
		Drums []chiptrack.DrumInstrument
	}

	Presets struct {
		Presets  []Preset
		DrumKits []DrumKit
		Dirs     []string
	}
)

// Load returns the built-in presets followed by the presets found in the
// chiptrack/presets directory of the user config dir. Files that are not
// valid YAML for the kind of preset they are in are silently skipped.
func Load() *Presets {
	var m Presets
	seenDir := make(map[string]bool)
	m.loadPresetsFromFs(presetFS, false, seenDir)
	if configDir, err := os.UserConfigDir(); err == nil {
		userPresets := filepath.Join(configDir, "chiptrack")
		m.loadPresetsFromFs(os.DirFS(userPresets), true, seenDir)
	}
	m.sortPresets(seenDir)
	return &m
}

// Builtin returns the file system of the built-in presets.
func Builtin() fs.FS {
	return presetFS
}

// LoadFS loads presets from the presets directory of fsys only.
func LoadFS(fsys fs.FS, userDefined bool) *Presets {
	var m Presets
	seenDir := make(map[string]bool)
	m.loadPresetsFromFs(fsys, userDefined, seenDir)
	m.sortPresets(seenDir)
	return &m
}

func (m *Presets) sortPresets(seenDir map[string]bool) {
	sort.SliceStable(m.Presets, func(i, j int) bool {
		if m.Presets[i].Directory != m.Presets[j].Directory {
			return m.Presets[i].Directory < m.Presets[j].Directory
		}
		return m.Presets[i].Instr.Name < m.Presets[j].Instr.Name
	})
	sort.SliceStable(m.DrumKits, func(i, j int) bool { return m.DrumKits[i].Name < m.DrumKits[j].Name })
	m.Dirs = make([]string, 0, len(seenDir))
	for k := range seenDir {
		m.Dirs = append(m.Dirs, k)
	}
	sort.Strings(m.Dirs)
}

func (m *Presets) loadPresetsFromFs(fsys fs.FS, userDefined bool, seenDir map[string]bool) {
	fs.WalkDir(fsys, "presets", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil
		}
		noExt := p[:len(p)-len(path.Ext(p))]
		splitted := strings.Split(noExt, "/")[1:] // remove "presets" from the path
		if len(splitted) < 2 {
			return nil
		}
		name := filenameToName(splitted[len(splitted)-1])
		switch splitted[0] {
		case "instruments":
			var instr chiptrack.Instrument
			if yaml.UnmarshalStrict(data, &instr) != nil || instr.Validate() != nil {
				return nil
			}
			instr.Name = name
			dir := strings.Join(splitted[1:len(splitted)-1], "/")
			if dir != "" {
				seenDir[dir] = true
			}
			m.Presets = append(m.Presets, Preset{Directory: dir, User: userDefined, Instr: instr})
		case "drums":
			var drums []chiptrack.DrumInstrument
			if yaml.UnmarshalStrict(data, &drums) != nil || len(drums) == 0 {
				return nil
			}
			for i := range drums {
				if drums[i].Validate() != nil {
					return nil
				}
			}
			m.DrumKits = append(m.DrumKits, DrumKit{Name: name, User: userDefined, Drums: drums})
		}
		return nil
	})
}

func filenameToName(filename string) string {
	return strings.ReplaceAll(filename, "_", " ")
}

// Instrument returns a copy of the instrument preset with the given name.
// User presets take precedence over built-in presets with the same name.
func (m *Presets) Instrument(name string) (chiptrack.Instrument, bool) {
	var ret *Preset
	for i := range m.Presets {
		p := &m.Presets[i]
		if strings.EqualFold(p.Instr.Name, name) && (ret == nil || p.User) {
			ret = p
		}
	}
	if ret == nil {
		return chiptrack.Instrument{}, false
	}
	return ret.Instr.Copy(), true
}

// DrumKit returns a copy of the drum sounds of the drum kit with the given
// name. User kits take precedence over built-in kits with the same name.
func (m *Presets) DrumKit(name string) ([]chiptrack.DrumInstrument, bool) {
	var ret *DrumKit
	for i := range m.DrumKits {
		k := &m.DrumKits[i]
		if strings.EqualFold(k.Name, name) && (ret == nil || k.User) {
			ret = k
		}
	}
	if ret == nil {
		return nil, false
	}
	drums := make([]chiptrack.DrumInstrument, len(ret.Drums))
	for i := range ret.Drums {
		drums[i] = ret.Drums[i].Copy()
	}
	return drums, true
}

// Names returns the names of all instrument presets, prefixed with their
// directory, followed by the names of all drum kits prefixed with "drums/".
func (m *Presets) Names() []string {
	var ret []string
	for _, p := range m.Presets {
		if p.Directory != "" {
			ret = append(ret, p.Directory+"/"+p.Instr.Name)
		} else {
			ret = append(ret, p.Instr.Name)
		}
	}
	for _, k := range m.DrumKits {
		ret = append(ret, "drums/"+k.Name)
	}
	return ret
}

// Search returns the instrument presets whose name contains all the given
// words, ignoring case.
func (m *Presets) Search(words ...string) []Preset {
	var ret []Preset
outer:
	for _, p := range m.Presets {
		name := strings.ToLower(p.Instr.Name)
		for _, w := range words {
			if !strings.Contains(name, strings.ToLower(w)) {
				continue outer
			}
		}
		ret = append(ret, p)
	}
	return ret
}
