// autotuneplay - load a WAV clip, snap its pitch to a scale, and play it back
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	autotune "github.com/signalcraft/autotune-core"
)

func main() {
	keyName := flag.String("key", "C", "key root note (e.g. C, F#, Bb)")
	scaleName := flag.String("scale", "major", "scale: major, minor, blues, pentatonic, chromatic")
	volume := flag.Float64("volume", 1.0, "output volume 0.0-1.0")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: autotuneplay [options] input.wav\n\nLoads a WAV clip, snaps its pitch to the nearest note in a key, and plays it back.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  autotuneplay -key C -scale major vocal.wav\n")
		fmt.Fprintf(os.Stderr, "  autotuneplay -key A -scale minor -volume 0.8 vocal.wav\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	scale, err := parseScale(*scaleName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	rootMIDI, err := autotune.NoteNameToMIDI(*keyName + "4")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid -key %q: %v\n", *keyName, err)
		os.Exit(1)
	}
	key := autotune.NewKey(autotune.Note(rootMIDI%12), scale)

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	clip, err := autotune.LoadWAV(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}

	clip.PerformPYINBackground(autotune.DefaultPYINOptions())
	pyin := clip.GetPYINBlocking()

	desired := autotune.SnapToScale(pyin.F0, key, autotune.DefaultFMin, autotune.DefaultFMax)
	clip.SetDesiredF0(desired)

	corrected, err := autotune.ComputeShiftedAudio(clip)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	mixer := autotune.NewMixer(corrected.SampleRate, 8)
	go mixer.Run()

	sink, err := autotune.NewOtoSink(int(corrected.SampleRate), 2)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening audio device: %v\n", err)
		os.Exit(1)
	}
	defer sink.Close()
	sink.Attach(mixer)

	mixer.Commands() <- autotune.SendTrackCmd(0, corrected)
	mixer.Commands() <- autotune.SetVolumeCmd(float32(*volume))
	mixer.Commands() <- autotune.PlayCmd()
	sink.Start()

	duration := time.Duration(corrected.Len()) * time.Second / time.Duration(corrected.SampleRate)
	time.Sleep(duration)

	mixer.Commands() <- autotune.ShutdownCmd()
}

func parseScale(name string) (autotune.Scale, error) {
	switch name {
	case "major":
		return autotune.ScaleMajor, nil
	case "minor":
		return autotune.ScaleMinor, nil
	case "blues":
		return autotune.ScaleBlues, nil
	case "pentatonic":
		return autotune.ScalePentatonic, nil
	case "chromatic":
		return autotune.ScaleChromatic, nil
	default:
		return 0, fmt.Errorf("unknown scale %q", name)
	}
}
