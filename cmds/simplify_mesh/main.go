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
	var reduce float64
	var removeCount int
	var logLevel string
	flag.Float64Var(&reduce, "reduce", 0.5, "fraction of vertices to remove")
	flag.IntVar(&removeCount, "remove", 0, "absolute vertex removal count (overrides -reduce)")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: simplify_mesh [flags] <input.stl> <output.stl>")
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

	logger.Infow("loading mesh", "path", inputPath)
	positions := readSTL(inputPath)
	graph, err := tubed.NewMeshGraph(positions, nil)
	essentials.Must(err)
	logger.Infow("mesh graph populated",
		"vertices", len(graph.Vertices),
		"faces", len(graph.Faces))

	target := removeCount
	if target <= 0 {
		if reduce < 0 {
			reduce = 0
		} else if reduce > 0.95 {
			reduce = 0.95
		}
		target = int(reduce * float64(len(graph.Vertices)))
	}
	dec := &tubed.Decimator{Graph: graph, Log: logger}
	dec.Collapse(target)

	logger.Infow("writing mesh", "path", outputPath)
	essentials.Must(graph.Mesh().SaveGroupedSTL(outputPath))
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
