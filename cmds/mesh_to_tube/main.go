package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
	"github.com/unixpickle/tube-d/logutil"
	"github.com/unixpickle/tube-d/tubed"
)

func main() {
	var configPath string
	var reduce float64
	var removeCount int
	var algorithm string
	var terminate bool
	var points int
	var radius float64
	var density float64
	var sides int
	var logLevel string
	var logFile string
	flag.StringVar(&configPath, "config", "", "optional yaml config file")
	flag.Float64Var(&reduce, "reduce", 0.5, "fraction of vertices to remove before tracing")
	flag.IntVar(&removeCount, "remove", 0, "absolute vertex removal count (overrides -reduce)")
	flag.StringVar(&algorithm, "algorithm", "nearest",
		"path search algorithm (sequential, nearest, greedy, wrapping)")
	flag.BoolVar(&terminate, "terminate", false, "stitch path endpoints toward neighboring paths")
	flag.IntVar(&points, "points", 0, "target total point count for curve resampling")
	flag.Float64Var(&radius, "radius", 0, "tube radius")
	flag.Float64Var(&density, "density", 0, "tube ring density multiplier")
	flag.IntVar(&sides, "sides", 0, "vertices per tube cross-section")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.StringVar(&logFile, "log-file", "", "optional rotated log file")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mesh_to_tube [flags] <input.stl> <output.stl>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath, outputPath := args[0], args[1]

	cfg := tubed.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = tubed.LoadConfig(configPath)
		essentials.Must(err)
	}
	// Explicit flags win over config file values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "reduce":
			cfg.ReduceFraction = reduce
		case "remove":
			cfg.RemoveCount = removeCount
		case "algorithm":
			cfg.Algorithm = algorithm
		case "terminate":
			cfg.TerminatePaths = terminate
		case "points":
			cfg.TargetPoints = points
		case "radius":
			cfg.TubeRadius = radius
		case "density":
			cfg.Density = density
		case "sides":
			cfg.TubeSides = sides
		}
	})

	logger := logutil.New(logLevel, logFile)
	defer logger.Sync()

	logger.Infow("loading mesh", "path", inputPath)
	positions := readSTL(inputPath)

	pipe := &tubed.Pipeline{Config: cfg, Log: logger}
	res, err := pipe.Run(positions, nil)
	essentials.Must(err)

	logger.Infow("writing tube", "path", outputPath)
	essentials.Must(res.Tube.Mesh().SaveGroupedSTL(outputPath))
}

func readSTL(path string) []float64 {
	f, err := os.Open(path)
	essentials.Must(err)
	defer f.Close()
	tris, err := model3d.ReadSTL(f)
	essentials.Must(err)
	buf := make([]float64, 0, len(tris)*9)
	for _, t := range tris {
		for _, c := range t {
			buf = append(buf, c.X, c.Y, c.Z)
		}
	}
	return buf
}
