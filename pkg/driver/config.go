// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package driver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/ensemble-tinker/pkg/ensemble"
	"github.com/mesh-intelligence/ensemble-tinker/pkg/namelist"
	"github.com/mesh-intelligence/ensemble-tinker/pkg/params"
)

// Config holds all ensemble build settings. It is loaded once from
// the simulation-setup YAML file and validated into its final form;
// nothing mutates it afterwards.
type Config struct {
	// PPE locates the ensemble on disk.
	PPE PPEConfig `yaml:"ppe"`

	// CreateCase describes the base case handed to the backend.
	CreateCase CreateCaseConfig `yaml:"create_case"`

	// EnvPE, EnvRun, and EnvBuild are optional case environment
	// settings applied best-effort: a key the backend rejects is
	// logged and skipped, since some keys are machine or version
	// dependent.
	EnvPE    map[string]string `yaml:"env_pe"`
	EnvRun   map[string]string `yaml:"env_run"`
	EnvBuild map[string]string `yaml:"env_build"`

	// Namelists is the per-component namelist content written into
	// the base case.
	Namelists namelist.Control `yaml:"namelists"`

	// LifeCycle supplies the default lists the lifeCycle parameter
	// families splice into.
	LifeCycle LifeCycleConfig `yaml:"lifecycle"`

	// ArtifactVars maps an artifact group to the namelist variable
	// receiving the generated file path.
	ArtifactVars map[string]string `yaml:"artifact_vars"`
}

// PPEConfig locates the ensemble's cases and inputs.
type PPEConfig struct {
	// BaseCase is the base case directory.
	BaseCase string `yaml:"base_case"`
	// ClonePrefix prefixes member case directories; member N lives
	// at <ClonePrefix>.NNN. Defaults to BaseCase.
	ClonePrefix string `yaml:"clone_prefix"`
	// SampleFile is the sample file the members are read from.
	SampleFile string `yaml:"sample_file"`
	// ScriptsDir holds the backend's create scripts.
	ScriptsDir string `yaml:"scripts_dir"`
	// KeepExe reuses the base case executable in clones and skips
	// the per-member build.
	KeepExe bool `yaml:"keepexe"`
	// Overwrite removes and recreates an existing base case.
	Overwrite bool `yaml:"overwrite"`
}

// CreateCaseConfig describes the base case.
type CreateCaseConfig struct {
	Compset        string `yaml:"compset"`
	Grid           string `yaml:"res"`
	Machine        string `yaml:"machine"`
	Project        string `yaml:"project"`
	RunUnsupported bool   `yaml:"run_unsupported"`
}

// LifeCycleConfig holds the default comma lists for the lifeCycle
// parameter families.
type LifeCycleConfig struct {
	NumberMedianRadius string `yaml:"number_median_radius"`
	Sigma              string `yaml:"sigma"`
}

// EnsembleConfig derives the assembly configuration.
func (c *Config) EnsembleConfig() ensemble.Config {
	return ensemble.Config{
		LifeCycleRadius: c.LifeCycle.NumberMedianRadius,
		LifeCycleSigma:  c.LifeCycle.Sigma,
		ArtifactVars:    c.ArtifactVars,
	}
}

func (c *Config) applyDefaults() {
	if c.PPE.ClonePrefix == "" {
		c.PPE.ClonePrefix = c.PPE.BaseCase
	}
}

func (c *Config) validate() error {
	if c.PPE.BaseCase == "" {
		return params.Configf("setup file: ppe.base_case is required")
	}
	if c.PPE.SampleFile == "" {
		return params.Configf("setup file: ppe.sample_file is required")
	}
	if c.CreateCase.Compset == "" || c.CreateCase.Grid == "" || c.CreateCase.Machine == "" {
		return params.Configf("setup file: create_case needs compset, res, and machine")
	}
	return nil
}

// LoadConfig reads and validates a simulation-setup YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading setup file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing setup file %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
