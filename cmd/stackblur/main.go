// Command stackblur blurs pictures with StackBlur.
//
//	stackblur [flags] <picture> [radius]
//	stackblur [flags] -dir <input> -out <output>
//
// Without -o the picture is overwritten in place.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-stackblur/config"
	"github.com/nvr-ai/go-stackblur/images"
	"github.com/nvr-ai/go-stackblur/profiler"
	"github.com/nvr-ai/go-stackblur/util"
)

// options collects command line values. Only flags that were set override the
// configuration file.
type options struct {
	picture    string
	configPath string
	output     string
	inputDir   string
	outputDir  string
	cpuProfile string
	report     bool

	cfg config.Config
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	var (
		o   options
		def = config.Default()
		set = def
	)
	fs.StringVar(&o.configPath, "config", "", "YAML or JSON settings file")
	fs.StringVar(&o.output, "o", "", "Output picture (default: overwrite the input)")
	fs.StringVar(&o.inputDir, "dir", "", "Blur every supported picture in this directory")
	fs.StringVar(&o.outputDir, "out", "", "Output directory for -dir")
	fs.StringVar(&o.cpuProfile, "cpuprofile", "", "Write a CPU profile to this file")
	fs.BoolVar(&o.report, "report", false, "Print timing and memory statistics when done")
	fs.IntVar(&set.Radius, "radius", def.Radius, "Blur radius (1-254)")
	fs.BoolVar(&set.BlurAlpha, "alpha", def.BlurAlpha, "Blur the alpha channel too")
	fs.StringVar(&set.Divisor, "divisor", def.Divisor, "Divisor strategy: exact or table")
	fs.StringVar(&set.Update, "update", def.Update, "Window update: incremental or recompute")
	fs.BoolVar(&set.Parallel, "parallel", def.Parallel, "Blur rows and columns on several goroutines")
	fs.BoolVar(&set.Linear, "linear", def.Linear, "Blur in linear light")
	fs.IntVar(&set.MaxSize, "max-size", def.MaxSize, "Downscale so neither side exceeds this (0 keeps size)")
	fs.IntVar(&set.Quality, "quality", def.Quality, "JPEG and WebP output quality")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	o.cfg = def
	if o.configPath != "" {
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		o.cfg = cfg
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "radius":
			o.cfg.Radius = set.Radius
		case "alpha":
			o.cfg.BlurAlpha = set.BlurAlpha
		case "divisor":
			o.cfg.Divisor = set.Divisor
		case "update":
			o.cfg.Update = set.Update
		case "parallel":
			o.cfg.Parallel = set.Parallel
		case "linear":
			o.cfg.Linear = set.Linear
		case "max-size":
			o.cfg.MaxSize = set.MaxSize
		case "quality":
			o.cfg.Quality = set.Quality
		}
	})

	rest := fs.Args()
	if o.inputDir != "" {
		if o.outputDir == "" || len(rest) > 0 {
			return nil, errors.New("-dir needs -out and no picture argument")
		}
	} else {
		if len(rest) < 1 || len(rest) > 2 {
			return nil, errors.New("expected <picture> [radius]")
		}
		o.picture = rest[0]
		if len(rest) == 2 {
			r, err := strconv.Atoi(rest[1])
			if err != nil {
				return nil, errors.Wrap(err, "radius must be an integer")
			}
			o.cfg.Radius = r
		}
	}

	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	return &o, nil
}

func main() {
	fs := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] <picture> [radius]\n", fs.Name())
		fmt.Fprintf(fs.Output(), "       %s [flags] -dir <input> -out <output>\n\n", fs.Name())
		fs.PrintDefaults()
	}

	o, err := parseFlags(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n", err)
		fs.Usage()
		os.Exit(2)
	}

	prof := profiler.NewRuntimeProfiler(profiler.ProfilingOptions{Output: os.Stdout})
	if o.cpuProfile != "" {
		if err := prof.StartCPUProfile(o.cpuProfile); err != nil {
			log.Fatalf("Failed to start CPU profile: %v", err)
		}
	}

	err = run(o, prof)
	if o.report {
		prof.Report()
	}
	prof.Stop()
	if err != nil {
		log.Printf("stackblur: %v", err)
		os.Exit(1)
	}
}

func run(o *options, prof *profiler.RuntimeProfiler) error {
	settings, err := o.cfg.Settings()
	if err != nil {
		return err
	}

	if o.inputDir != "" {
		return blurDirectory(o.inputDir, o.outputDir, settings, prof)
	}

	out := o.output
	if out == "" {
		out = o.picture
	}
	done := prof.StartOperation("blur")
	defer done()
	return images.BlurFile(o.picture, out, settings)
}

func blurDirectory(in, out string, settings images.Settings, prof *profiler.RuntimeProfiler) error {
	files, err := util.LoadDirectoryImageFiles(in)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	for _, f := range files {
		name := filepath.Base(f.Path)
		start := time.Now()
		done := prof.StartOperation("blur")
		data, err := images.BlurBytes(f.Data, f.Format, settings)
		done()
		if err != nil {
			return errors.Wrap(err, name)
		}
		log.Printf("Blurring %s took %v", name, time.Since(start).Truncate(time.Microsecond))

		if err := os.WriteFile(filepath.Join(out, name), data, 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", name)
		}
	}
	log.Printf("Blurred %d pictures into %s", len(files), out)
	return nil
}
