package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/chiptrack/chiptrack"
	"github.com/chiptrack/chiptrack/cmd"
	"github.com/chiptrack/chiptrack/config"
	"github.com/chiptrack/chiptrack/presets"
	"github.com/chiptrack/chiptrack/synth"
	"github.com/chiptrack/chiptrack/version"
)

func main() {
	help := pflag.BoolP("help", "h", false, "Show help.")
	listPresets := pflag.Bool("list", false, "List the available presets and exit.")
	preset := pflag.String("preset", "", "Render a single note of this instrument preset, or the drum sounds of this drum kit, instead of a song.")
	note := pflag.Int("note", 69, "Pitch of the note rendered with -preset. 69 is A4 (440 Hz).")
	gate := pflag.Float64("gate", 250, "Gate length in milliseconds of the note rendered with -preset.")
	volume := pflag.Int("volume", -1, "Playback volume, 0 .. 1024. Defaults to the volume in config.yml.")
	verbose := pflag.Bool("verbose", false, "Log debug messages.")
	versionFlag := pflag.BoolP("version", "v", false, "Print version.")
	pflag.Usage = printUsage
	pflag.Parse()
	if *versionFlag {
		fmt.Println(version.Describe("chiptrack-render"))
		os.Exit(0)
	}
	if *help {
		pflag.Usage()
		os.Exit(0)
	}
	logger := cmd.InitLogger(*verbose)
	conf := config.Load()
	if conf.YmlError != nil {
		logger.Warn("could not read user config, using defaults", "err", conf.YmlError)
	}
	if *volume >= 0 {
		conf.Volume = *volume
	}
	if err := conf.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	p := presets.Load()
	logger.Debug("loaded presets", "instruments", len(p.Presets), "drumkits", len(p.DrumKits))
	if *listPresets {
		printPresets(os.Stdout, p)
		os.Exit(0)
	}
	if *preset != "" {
		if err := renderPreset(os.Stdout, p, *preset, *note, *gate, conf.Volume); err != nil {
			fmt.Fprintf(os.Stderr, "could not render preset %v: %v\n", *preset, err)
			os.Exit(1)
		}
		os.Exit(0)
	}
	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(0)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	files, err := cmd.ExpandPaths(pflag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	retval := 0
	for _, file := range files {
		song, err := cmd.LoadSong(file, conf, p)
		if err == nil {
			var sounds []synth.Sound
			sounds, err = synth.RenderSong(ctx, &song, conf.Volume)
			if err == nil {
				logger.Debug("rendered song", "file", file, "sounds", len(sounds))
				fmt.Printf("%v\n", file)
				printSounds(os.Stdout, sounds)
			}
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
			retval = 1
		}
	}
	stop()
	os.Exit(retval)
}

func renderPreset(w io.Writer, p *presets.Presets, name string, pitch int, gate float64, volume int) error {
	if instr, ok := p.Instrument(name); ok {
		b, err := synth.RenderInstrument(instr, chiptrack.NoteFrequency(pitch), gate, volume)
		if err != nil {
			return err
		}
		printSounds(w, []synth.Sound{{Pitch: pitch, Segments: b}})
		return nil
	}
	if drums, ok := p.DrumKit(name); ok {
		var sounds []synth.Sound
		for i := range drums {
			b, err := synth.RenderDrumInstrument(drums[i], volume)
			if err != nil {
				return fmt.Errorf("drum %v: %w", i, err)
			}
			sounds = append(sounds, synth.Sound{Pitch: i, Segments: b})
		}
		printSounds(w, sounds)
		return nil
	}
	return fmt.Errorf("no instrument preset or drum kit with that name")
}

func printSounds(w io.Writer, sounds []synth.Sound) {
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "track\tstart ms\tpitch\twave\tfreq\tend freq\tms\tvolume\tend volume\t")
	for _, s := range sounds {
		for _, seg := range synth.DecodeSegments(s.Segments) {
			fmt.Fprintf(tw, "%d\t%.1f\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t\n",
				s.Track, s.StartMs, s.Pitch, seg.Waveform, seg.Frequency, seg.EndFrequency, seg.Duration, seg.StartVolume, seg.EndVolume)
		}
	}
	tw.Flush()
}

func printPresets(w io.Writer, p *presets.Presets) {
	title := cases.Title(language.English)
	for _, preset := range p.Presets {
		user := ""
		if preset.User {
			user = " (user)"
		}
		fmt.Fprintf(w, "%-10v %v%v\n", preset.Directory, title.String(preset.Instr.Name), user)
	}
	for _, k := range p.DrumKits {
		names := make([]string, len(k.Drums))
		for i, d := range k.Drums {
			names[i] = d.Name
		}
		fmt.Fprintf(w, "%-10v %v: %v\n", "drums", title.String(k.Name), strings.Join(names, ", "))
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "chiptrack renderer. Lists the tone generator segments of every note of the songs, or of a single preset.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	pflag.PrintDefaults()
}
