package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/karlmutch/rgbfx"
	"github.com/karlmutch/rgbfx/version"

	"github.com/karlmutch/envflag" // Forked copy of https://github.com/GoBike/envflag
)

var (
	logger = logxi.New("rgbfx")

	verbose = flag.Bool("v", false, "When enabled will print internal logging for this tool")

	sinkKind = flag.String("sink", "opc", "The lighting server type, opc or hue")
	server   = flag.String("server", "127.0.0.1:7890", "The address of the OPC lighting server, or the hue bridge host")
	hueUser  = flag.String("hue-user", "", "The authorized user token for the hue bridge")
	leds     = flag.String("leds", "64", "Comma separated LED counts, one per OPC channel")

	effect  = flag.String("effect", "", "The name of the effect to run")
	options = flag.String("options", "", "Comma separated key=value effect options")

	list     = flag.Bool("list", false, "List the available effects and exit")
	describe = flag.String("describe", "", "Show the options of the named effect and exit")

	audioIn       = flag.String("audio", "", "A raw S16LE PCM stream for the audio effects, - for stdin")
	audioChannels = flag.Int("audio-channels", 2, "The channel count of the PCM stream")
)

func usage() {
	fmt.Fprintln(os.Stderr, path.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "usage: ", os.Args[0], "[options]       effects → OPC/hue lighting servers      ", version.GitHash, "    ", version.BuildTime)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "rgbfx drives addressable RGB lighting with a library of runtime selectable effects")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment Variables:")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options can also be extracted from environment variables by changing dashes '-' to underscores and using upper case.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "log levels are handled by the LOGXI env variables, these are documented at https://github.com/mgutz/logxi")
}

func init() {
	flag.Usage = usage
}

func parseLeds(spec string) (counts []int, err error) {
	for _, part := range strings.Split(spec, ",") {
		count, errGo := strconv.Atoi(strings.TrimSpace(part))
		if errGo != nil {
			return nil, errGo
		}
		counts = append(counts, count)
	}
	return counts, nil
}

func newSink() (sink rgbfx.Sink, err error) {
	switch *sinkKind {
	case "opc":
		counts, errGo := parseLeds(*leds)
		if errGo != nil {
			return nil, fmt.Errorf("invalid -leds value %q: %v", *leds, errGo)
		}
		return rgbfx.NewOPCSink(*server, counts), nil
	case "hue":
		return rgbfx.NewHueSink(*server, *hueUser), nil
	}
	return nil, fmt.Errorf("unknown sink type %q", *sinkKind)
}

func newAudioSource() (source rgbfx.AudioSource, err error) {
	if *audioIn == "" {
		return nil, nil
	}
	reader := os.Stdin
	if *audioIn != "-" {
		if reader, err = os.Open(*audioIn); err != nil {
			return nil, err
		}
	}
	pcm := rgbfx.NewPCMSource(reader, *audioChannels)
	return rgbfx.NewTimeoutSource(pcm, 250*time.Millisecond), nil
}

func main() {

	// Parse the CLI flags
	if !flag.Parsed() {
		envflag.Parse()
	}

	// Turn off logging regardless of the default levels if the verbose flag is not enabled.
	// By design this is a CLI tool and outputs information that is expected to be used by shell
	// scripts etc
	//
	if *verbose {
		logger.SetLevel(logxi.LevelDebug)
	}

	logger.Debug(fmt.Sprintf("%s built at %s, against commit id %s\n", os.Args[0], version.BuildTime, version.GitHash))

	sink, errGo := newSink()
	if errGo != nil {
		fmt.Fprintln(os.Stderr, errGo.Error())
		os.Exit(-1)
	}

	audio, errGo := newAudioSource()
	if errGo != nil {
		fmt.Fprintln(os.Stderr, errGo.Error())
		os.Exit(-1)
	}

	controller, err := rgbfx.NewController(sink, rgbfx.WithAudioSource(audio))
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}

	if *list {
		for _, name := range controller.ListEffects() {
			fmt.Fprintln(os.Stdout, name)
		}
		return
	}

	if *describe != "" {
		info, err := controller.Describe(*describe)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(-1)
		}
		names := make([]string, 0, len(info))
		for name := range info {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(os.Stdout, "%s (default: %s, accepts: %s) %s\n", name, info[name].Default, info[name].Formats, info[name].Help)
		}
		return
	}

	if *effect == "" {
		usage()
		os.Exit(-1)
	}

	overrides, err := rgbfx.ParseOptionList(*options)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}

	if err = controller.Connect(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}
	defer controller.Close()

	// A first interrupt asks the running effect to wind down, devices
	// are restored by its teardown before the process exits.
	quitC := make(chan struct{})
	go func() {
		sigC := make(chan os.Signal, 1)
		signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)
		<-sigC
		close(quitC)
	}()

	if err = controller.RunEffect(*effect, overrides, quitC); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}
}
