package nestedsampling

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config aggregates every tunable of the engine, validated once at
// construction time rather than checked piecemeal during a run.
type Config struct {
	// NLive is the initial live-point count.
	NLive int `yaml:"n_live"`

	// MinNObjects is the floor the live set never drops below.
	MinNObjects int `yaml:"min_n_objects"`

	// TerminationFactor is the rho threshold below which the run stops.
	TerminationFactor float64 `yaml:"termination_factor"`

	// MaxNDrawAttempts bounds the sampler's rejection loop.
	MaxNDrawAttempts int `yaml:"max_n_draw_attempts"`

	// ClusteringInterval is C: the clusterer runs every C iterations.
	ClusteringInterval int `yaml:"clustering_interval"`

	// InitialClusteringDelay is C_init: iterations before k < C_init
	// treat the live set as a single cluster.
	InitialClusteringDelay int `yaml:"initial_clustering_delay"`

	// InitialEnlargementFraction and ShrinkingRate feed the sampler.
	InitialEnlargementFraction float64 `yaml:"initial_enlargement_fraction"`
	ShrinkingRate              float64 `yaml:"shrinking_rate"`

	// Reducer selects the live-point reduction schedule.
	Reducer ReducerConfig `yaml:"reducer"`

	// Clusterer selects the k-means model-selection range and tolerances.
	Clusterer ClustererConfig `yaml:"clusterer"`

	// Seed seeds the driver's single RNG sequence. Zero means
	// "unseeded" — the driver falls back to wall-clock at init.
	Seed int64 `yaml:"seed"`

	// Verbose enables progress logging.
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns reasonable defaults matching the Feroz reducer
// and the enlargement/shrinking constants commonly used by multi-
// ellipsoidal nested samplers.
func DefaultConfig(nLive int) Config {
	return Config{
		NLive:                       nLive,
		MinNObjects:                 nLive / 10,
		TerminationFactor:           0.01,
		MaxNDrawAttempts:            100000,
		ClusteringInterval:          50,
		InitialClusteringDelay:      200,
		InitialEnlargementFraction:  1.1,
		ShrinkingRate:               1.0,
		Reducer: ReducerConfig{
			Strategy:            ReducerFeroz,
			InitialNObjects:     nLive,
			MinNObjects:         nLive / 10,
			ToleranceOnEvidence: 1.0,
		},
		Clusterer: ClustererConfig{
			KMin:               1,
			KMax:               8,
			NTrials:            5,
			RelTolerance:       1e-4,
			MaxIterations:      500,
			CostRatioTolerance: 0.9,
		},
	}
}

// Validate checks every field invariant at construction time; a
// configuration error is always fatal rather than something a run can
// degrade gracefully around.
func (c Config) Validate(d int) error {
	if c.NLive < d+1 {
		return newEngineError(KindInvalidConfig, "n_live must be >= D+1", nil)
	}
	if c.MinNObjects < 1 || c.MinNObjects > c.NLive {
		return newEngineError(KindInvalidConfig, "min_n_objects must be in [1, n_live]", nil)
	}
	if c.TerminationFactor <= 0 {
		return newEngineError(KindInvalidConfig, "termination_factor must be > 0", nil)
	}
	if c.MaxNDrawAttempts < 1 {
		return newEngineError(KindInvalidConfig, "max_n_draw_attempts must be >= 1", nil)
	}
	if c.ClusteringInterval < 1 {
		return newEngineError(KindInvalidConfig, "clustering_interval must be >= 1", nil)
	}
	if c.InitialClusteringDelay < 0 {
		return newEngineError(KindInvalidConfig, "initial_clustering_delay must be >= 0", nil)
	}
	if c.InitialEnlargementFraction < 1 {
		return newEngineError(KindInvalidConfig, "initial_enlargement_fraction must be >= 1", nil)
	}
	if c.ShrinkingRate < 0 {
		return newEngineError(KindInvalidConfig, "shrinking_rate must be >= 0", nil)
	}
	if err := c.Reducer.Validate(); err != nil {
		return err
	}
	if err := c.Clusterer.Validate(); err != nil {
		return err
	}
	return nil
}

// LoadConfig reads a YAML run configuration from path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, newEngineError(KindInvalidConfig, "reading config file", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, newEngineError(KindInvalidConfig, "parsing config file", err)
	}
	return cfg, nil
}
