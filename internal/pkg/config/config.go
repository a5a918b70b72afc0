package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// VerificationSchedule is the administrator-confirmed bonus schedule applied
// when a report is verified.
type VerificationSchedule struct {
	Base           int `envconfig:"BASE" default:"10"`
	HighPriority   int `envconfig:"HIGH" default:"15"`
	MediumPriority int `envconfig:"MEDIUM" default:"10"`
	LowPriority    int `envconfig:"LOW" default:"5"`
	PhotoBonus     int `envconfig:"PHOTO" default:"5"`
}

// SubmissionSchedule is the smaller schedule shown to the citizen when a
// report is submitted. It must stay separate from VerificationSchedule.
type SubmissionSchedule struct {
	Base         int `envconfig:"BASE" default:"10"`
	HighPriority int `envconfig:"HIGH" default:"5"`
}

type Config struct {
	Verification   VerificationSchedule `envconfig:"REWARD_VERIFY"`
	Submission     SubmissionSchedule   `envconfig:"REWARD_SUBMIT"`
	MaxOverride    int                  `envconfig:"REWARD_MAX_OVERRIDE" default:"100"`
	PointsPerLevel int                  `envconfig:"REWARD_POINTS_PER_LEVEL" default:"100"`
	QueueWorkers   int                  `envconfig:"JOBQUEUE_WORKERS" default:"3"`
}

// Load reads the engine configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env vars: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration with all defaults applied.
func Default() *Config {
	return &Config{
		Verification:   VerificationSchedule{Base: 10, HighPriority: 15, MediumPriority: 10, LowPriority: 5, PhotoBonus: 5},
		Submission:     SubmissionSchedule{Base: 10, HighPriority: 5},
		MaxOverride:    100,
		PointsPerLevel: 100,
		QueueWorkers:   3,
	}
}
