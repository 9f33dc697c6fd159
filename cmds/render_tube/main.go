package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
	"github.com/unixpickle/model3d/render3d"
	"github.com/unixpickle/tube-d/logutil"
	"github.com/unixpickle/tube-d/tubed"
)

func main() {
	var configPath string
	var progress float64
	var gridSize int
	var imageSize int
	var fps float64
	var frames int
	var logLevel string
	flag.StringVar(&configPath, "config", "", "optional yaml config file")
	flag.Float64Var(&progress, "progress", 1.0, "extrusion progress fraction to render")
	flag.IntVar(&gridSize, "grid-size", 3, "grid size (used for rows and columns)")
	flag.IntVar(&imageSize, "image-size", 300, "size of each image in the grid")
	flag.Float64Var(&fps, "fps", 10.0, "FPS for GIF outputs")
	flag.IntVar(&frames, "frames", 20, "total number of frames for GIF outputs")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: render_tube [flags] <input.stl> <output.png>")
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

	cfg := tubed.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = tubed.LoadConfig(configPath)
		essentials.Must(err)
	}

	logger.Infow("loading mesh", "path", inputPath)
	positions := readSTL(inputPath)
	pipe := &tubed.Pipeline{Config: cfg, Log: logger}
	res, err := pipe.Run(positions, nil)
	essentials.Must(err)

	mesh := model3d.NewMeshTriangles(res.Tube.VisibleAt(progress))
	if mesh.NumTriangles() == 0 {
		logger.Fatalw("nothing visible at requested progress", "progress", progress)
	}
	object := render3d.Objectify(model3d.MeshToCollider(mesh), nil)

	logger.Infow("rendering", "path", outputPath, "progress", progress)
	ext := filepath.Ext(outputPath)
	if strings.ToLower(ext) == ".gif" {
		essentials.Must(
			render3d.SaveRotatingGIF(
				outputPath,
				object,
				model3d.Z(1),
				model3d.YZ(-1, 0.1).Normalize(),
				imageSize,
				frames,
				fps,
				nil,
			),
		)
	} else {
		essentials.Must(
			render3d.SaveRandomGrid(outputPath, object, gridSize, gridSize, imageSize, nil),
		)
	}
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
