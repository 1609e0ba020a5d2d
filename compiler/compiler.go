package compiler

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/chiptrack/chiptrack"
)

type Compiler struct {
	Template *template.Template
}

//go:embed templates/*
var templateFS embed.FS

// New returns a new compiler using the default templates
func New() (*Compiler, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.*")
	if err != nil {
		return nil, fmt.Errorf(`could not create templates: %v`, err)
	}
	return &Compiler{Template: tmpl}, nil
}

func NewFromTemplates(templateDirectory string) (*Compiler, error) {
	globPtrn := filepath.Join(templateDirectory, "*.*")
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseGlob(globPtrn)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on directory "%v": %v`, templateDirectory, err)
	}
	return &Compiler{Template: tmpl}, nil
}

// SongMacros is the data the templates are executed with.
type SongMacros struct {
	Name  string
	Song  *chiptrack.Song
	Bytes []byte
}

// Hex returns the encoded song as a lowercase hex string without any quoting.
func (m *SongMacros) Hex() string {
	return fmt.Sprintf("%x", m.Bytes)
}

// Rows splits the encoded song into rows of at most n bytes, for templates
// that print the bytes as an array literal.
func (m *SongMacros) Rows(n int) [][]byte {
	var ret [][]byte
	for b := m.Bytes; len(b) > 0; {
		k := min(n, len(b))
		ret = append(ret, b[:k])
		b = b[k:]
	}
	return ret
}

// Song encodes the song and embeds it into every template of the compiler.
// The returned map is keyed by the file extension of the template, e.g. ".ts"
// or ".h".
func (com *Compiler) Song(name string, song *chiptrack.Song) (map[string]string, error) {
	b, err := EncodeSong(song)
	if err != nil {
		return nil, fmt.Errorf(`could not encode song: %v`, err)
	}
	macros := &SongMacros{Name: name, Song: song, Bytes: b}
	retmap := map[string]string{}
	for _, t := range com.Template.Templates() {
		templateName := t.Name()
		if filepath.Ext(templateName) == "" {
			continue // the root template
		}
		populatedTemplate, extension, err := com.compile(templateName, macros)
		if err != nil {
			return nil, fmt.Errorf(`could not execute template "%v": %v`, templateName, err)
		}
		retmap[extension] = populatedTemplate
	}
	return retmap, nil
}

func (com *Compiler) compile(templateName string, data interface{}) (string, string, error) {
	result := bytes.NewBufferString("")
	err := com.Template.ExecuteTemplate(result, templateName, data)
	extension := filepath.Ext(templateName)
	return result.String(), extension, err
}
