package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"

	"github.com/chiptrack/chiptrack/cmd"
	"github.com/chiptrack/chiptrack/compiler"
	"github.com/chiptrack/chiptrack/config"
	"github.com/chiptrack/chiptrack/presets"
	"github.com/chiptrack/chiptrack/version"
)

func filterExtensions(input map[string][]byte, extensions []string) map[string][]byte {
	ret := map[string][]byte{}
	for _, ext := range extensions {
		extWithDot := "." + strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if inputVal, ok := input[extWithDot]; ok {
			ret[extWithDot] = inputVal
		}
	}
	return ret
}

func main() {
	safe := pflag.BoolP("never-overwrite", "n", false, "Never overwrite files; if file already exists and would be overwritten, give an error.")
	list := pflag.BoolP("list", "l", false, "Do not write files; just list files that would change instead.")
	stdout := pflag.BoolP("stdout", "s", false, "Do not write files; write to standard output instead.")
	help := pflag.BoolP("help", "h", false, "Show help.")
	dump := pflag.BoolP("dump", "d", false, "Dump the song, as decoded back from the binary encoding, to standard output.")
	tmplDir := pflag.StringP("templates", "t", "", "Use the templates in this directory instead of the standard templates.")
	outPath := pflag.StringP("output", "o", "", "Directory or filename where to write compiled files. Extension is ignored. Directory and its parents are created if needed. By default, everything is placed in the working directory.")
	extensionsOut := pflag.StringP("extensions", "e", "", "Output only the files with these comma separated extensions: bin, hex, ts, h. Defaults to the extensions in config.yml.")
	verbose := pflag.Bool("verbose", false, "Log debug messages.")
	versionFlag := pflag.BoolP("version", "v", false, "Print version.")
	pflag.Usage = printUsage
	pflag.Parse()
	if *versionFlag {
		fmt.Println(version.Describe("chiptrack-compile"))
		os.Exit(0)
	}
	if pflag.NArg() == 0 || *help {
		pflag.Usage()
		os.Exit(0)
	}
	logger := cmd.InitLogger(*verbose)
	conf := config.Load()
	if conf.YmlError != nil {
		logger.Warn("could not read user config, using defaults", "err", conf.YmlError)
	}
	extensions := conf.Extensions
	if *extensionsOut != "" {
		extensions = strings.Split(*extensionsOut, ",")
	}
	var comp *compiler.Compiler
	var err error
	if *tmplDir != "" {
		comp, err = compiler.NewFromTemplates(*tmplDir)
	} else {
		comp, err = compiler.New()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating compiler: %v\n", err)
		os.Exit(1)
	}
	p := presets.Load()
	output := func(filename string, extension string, contents []byte) error {
		if *stdout {
			os.Stdout.Write(contents)
			return nil
		}
		_, name := filepath.Split(filename)
		var dir string
		if *outPath != "" {
			// check if it's an already existing directory and the user just forgot trailing slash
			if info, err := os.Stat(*outPath); err == nil && info.IsDir() {
				dir = *outPath
			} else {
				outdir, outname := filepath.Split(*outPath)
				if outdir != "" {
					dir = outdir
				}
				if outname != "" {
					name = outname
				}
			}
		}
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		f := filepath.Join(dir, name)
		original, err := os.ReadFile(f)
		if err == nil {
			if bytes.Equal(original, contents) {
				logger.Debug("file is up to date", "file", f)
				return nil // no need to update
			}
			if !*list && *safe {
				return fmt.Errorf("file %v would be overwritten by compiler", f)
			}
		}
		if *list {
			fmt.Println(f)
			return nil
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		logger.Info("wrote file", "file", f, "bytes", len(contents))
		return nil
	}
	process := func(filename string) error {
		song, err := cmd.LoadSong(filename, conf, p)
		if err != nil {
			return err
		}
		logger.Debug("loaded song", "file", filename, "tracks", len(song.Tracks), "bpm", song.BeatsPerMinute)
		encoded, err := compiler.EncodeSong(&song)
		if err != nil {
			return fmt.Errorf("encoding song failed: %v", err)
		}
		if *dump {
			decoded, err := compiler.DecodeSong(encoded)
			if err != nil {
				return fmt.Errorf("decoding the encoded song failed: %v", err)
			}
			spew.Fdump(os.Stdout, decoded)
		}
		name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		sources, err := comp.Song(name, &song)
		if err != nil {
			return fmt.Errorf("compiling song failed: %v", err)
		}
		hex, err := compiler.EncodeSongToHex(&song)
		if err != nil {
			return fmt.Errorf("encoding song failed: %v", err)
		}
		files := map[string][]byte{".bin": encoded, ".hex": []byte(hex)}
		for ext, code := range sources {
			files[ext] = []byte(code)
		}
		for extension, contents := range filterExtensions(files, extensions) {
			if err := output(filename, extension, contents); err != nil {
				return fmt.Errorf("error outputting %v file: %v", extension, err)
			}
		}
		return nil
	}
	files, err := cmd.ExpandPaths(pflag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	retval := 0
	for _, file := range files {
		if err := process(file); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "chiptrack compiler. Input .yml, .json or .mid songs, outputs encoded songs (.bin, .hex, .ts and .h files).\nUsage: %s [flags] [path ...]\n", os.Args[0])
	pflag.PrintDefaults()
}
