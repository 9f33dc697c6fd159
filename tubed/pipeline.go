package tubed

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config holds the tunable parameters of a full pipeline run. All fields
// have usable defaults from DefaultConfig and can be overridden from a
// yaml file or flags.
type Config struct {
	// ReduceFraction removes this fraction of vertices during
	// decimation, clamped to [0, 0.95]. Ignored when RemoveCount is set.
	ReduceFraction float64 `yaml:"reduce_fraction"`

	// RemoveCount, when positive, is an absolute vertex-removal count.
	RemoveCount int `yaml:"remove_count"`

	Algorithm      string `yaml:"algorithm"`
	TerminatePaths bool   `yaml:"terminate_paths"`

	TargetPoints int `yaml:"target_points"`

	TubeRadius float64 `yaml:"tube_radius"`
	TubeSides  int     `yaml:"tube_sides"`
	Density    float64 `yaml:"density"`
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		ReduceFraction: 0.5,
		Algorithm:      "nearest",
		TargetPoints:   defaultTargetPoints,
		TubeRadius:     defaultTubeRadius,
		TubeSides:      defaultTubeSides,
		Density:        1,
	}
}

// LoadConfig reads a yaml config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

// A Pipeline drives the stages strictly sequentially: populate, decimate,
// path search, curve building, tube extrusion. Each stage consumes the
// prior stage's complete output; a stage failure aborts the run with a
// descriptive error and no partial result.
type Pipeline struct {
	Config Config
	Log    *zap.SugaredLogger
}

// PipelineResult bundles the outputs of every stage of one run. The
// result is replaced wholesale on re-run, never updated incrementally.
type PipelineResult struct {
	Graph  *MeshGraph
	Search *SearchResult
	Curves *BuiltCurves
	Tube   *Tube
}

// Run executes the whole pipeline over a flat mesh buffer.
func (p *Pipeline) Run(positions []float64, indices []int) (*PipelineResult, error) {
	graph, err := NewMeshGraph(positions, indices)
	if err != nil {
		return nil, fmt.Errorf("populate stage: %w", err)
	}
	if p.Log != nil {
		p.Log.Infow("mesh graph populated",
			"vertices", len(graph.Vertices),
			"faces", len(graph.Faces))
	}

	removal := p.Config.RemoveCount
	if removal <= 0 {
		frac := p.Config.ReduceFraction
		if frac < 0 {
			frac = 0
		} else if frac > 0.95 {
			frac = 0.95
		}
		removal = int(frac * float64(len(graph.Vertices)))
	}
	dec := &Decimator{Graph: graph, Log: p.Log}
	dec.Collapse(removal)

	algo, err := ParseAlgorithm(p.Config.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("search stage: %w", err)
	}
	search, err := Search(graph, SearchOptions{
		Algorithm:      algo,
		TerminatePaths: p.Config.TerminatePaths,
		Log:            p.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("search stage: %w", err)
	}

	curves, err := BuildCurves(search.Paths, search.MinSpacing, CurveOptions{
		TargetPoints: p.Config.TargetPoints,
		Log:          p.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("curve stage: %w", err)
	}

	tube := ExtrudeTubes(curves, TubeOptions{
		Radius:  p.Config.TubeRadius,
		Density: p.Config.Density,
		Sides:   p.Config.TubeSides,
	})
	if p.Log != nil {
		p.Log.Infow("tube extruded",
			"points", tube.TotalPoints(),
			"triangles", len(tube.triangles))
	}

	return &PipelineResult{
		Graph:  graph,
		Search: search,
		Curves: curves,
		Tube:   tube,
	}, nil
}
