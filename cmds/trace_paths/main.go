package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
	"github.com/unixpickle/tube-d/logutil"
	"github.com/unixpickle/tube-d/tubed"
)

type traceOutput struct {
	Algorithm  string         `json:"algorithm"`
	MinSpacing float64        `json:"min_spacing"`
	Paths      [][][3]float64 `json:"paths"`
}

func main() {
	var reduce float64
	var algorithm string
	var terminate bool
	var logLevel string
	flag.Float64Var(&reduce, "reduce", 0.5, "fraction of vertices to remove before tracing")
	flag.StringVar(&algorithm, "algorithm", "nearest",
		"path search algorithm (sequential, nearest, greedy, wrapping)")
	flag.BoolVar(&terminate, "terminate", false, "stitch path endpoints toward neighboring paths")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: trace_paths [flags] <input.stl> <output.json>")
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

	logger := logutil.New(logLevel, "")
	defer logger.Sync()

	algo, err := tubed.ParseAlgorithm(algorithm)
	essentials.Must(err)

	logger.Infow("loading mesh", "path", inputPath)
	positions := readSTL(inputPath)
	graph, err := tubed.NewMeshGraph(positions, nil)
	essentials.Must(err)

	if reduce > 0 {
		if reduce > 0.95 {
			reduce = 0.95
		}
		dec := &tubed.Decimator{Graph: graph, Log: logger}
		dec.Collapse(int(reduce * float64(len(graph.Vertices))))
	}

	res, err := tubed.Search(graph, tubed.SearchOptions{
		Algorithm:      algo,
		TerminatePaths: terminate,
		Log:            logger,
	})
	essentials.Must(err)

	out := traceOutput{
		Algorithm:  algo.String(),
		MinSpacing: res.MinSpacing,
	}
	for _, p := range res.Paths {
		path := make([][3]float64, len(p))
		for i, c := range p {
			path[i] = [3]float64{c.X, c.Y, c.Z}
		}
		out.Paths = append(out.Paths, path)
	}

	logger.Infow("writing paths", "path", outputPath, "count", len(out.Paths))
	f, err := os.Create(outputPath)
	essentials.Must(err)
	defer f.Close()
	essentials.Must(json.NewEncoder(f).Encode(&out))
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
