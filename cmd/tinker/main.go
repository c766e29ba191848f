// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command tinker generates perturbed-parameter ensembles: it samples
// a parameter space into a sample file, derives the ensemble's cases
// from a base case, and checks or submits the resulting case
// directories.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/ensemble-tinker/pkg/artifact"
	"github.com/mesh-intelligence/ensemble-tinker/pkg/driver"
	"github.com/mesh-intelligence/ensemble-tinker/pkg/ensemble"
	"github.com/mesh-intelligence/ensemble-tinker/pkg/logging"
	"github.com/mesh-intelligence/ensemble-tinker/pkg/params"
	"github.com/mesh-intelligence/ensemble-tinker/pkg/sample"
)

var (
	// Global flags.
	verbosity int
	logFile   string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tinker",
	Short: "Perturbed-parameter ensemble tooling for climate model cases",
	Long: `tinker drives perturbed-parameter ensembles (PPE) end to end:

  sample  draw a parameter sample and write the ensemble's sample file
  build   build the base case and clone one case per ensemble member
  check   report the build status of case directories
  submit  submit case directories to the scheduler

Configuration problems exit non-zero before any case is touched.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(logging.FromCount(verbosity), logFile)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// --- sample ---

var (
	rangesPath     string
	samplePath     string
	members        int
	scramble       bool
	optimization   string
	excludeDefault bool
	oneAtATime     bool
	seed           int64
	paramNames     []string
	assumedComp    string
	artifactDir    string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw a parameter sample and write the sample file",
	Long: `Reads the parameter-ranges file, draws a Latin Hypercube (or
one-at-a-time) design over the declared parameters, generates any
per-member artifact files the ranges file declares, and writes the sample file
the build command consumes.`,
	RunE: runSample,
}

func runSample(cmd *cobra.Command, args []string) error {
	rf, err := params.LoadRanges(rangesPath)
	if err != nil {
		return err
	}
	raws := rf.Parameters
	if len(paramNames) > 0 {
		if raws, err = params.Subset(raws, paramNames); err != nil {
			return err
		}
	}
	specs, err := params.ResolveSet(raws, assumedComp)
	if err != nil {
		return err
	}
	m, err := sample.Draw(specs, sample.Options{
		Members:        members,
		Scramble:       scramble,
		Optimization:   optimization,
		ExcludeDefault: excludeDefault,
		OneAtATime:     oneAtATime,
		Seed:           seed,
	}, logger)
	if err != nil {
		return err
	}

	artifacts, err := generateArtifacts(rf, m)
	if err != nil {
		return err
	}

	if err := sample.WriteFile(samplePath, m, artifacts); err != nil {
		return err
	}
	logger.Info("sample file written",
		zap.String("path", samplePath),
		zap.Int("members", len(m.Rows)),
		zap.Int("parameters", len(m.Specs)))
	return nil
}

// generateArtifacts runs every artifact group flagged in the ranges
// file through its writer.
func generateArtifacts(rf *params.RangeFile, m *sample.Matrix) (map[string]map[int]string, error) {
	groups := make(map[string][]params.Spec)
	for _, s := range m.Specs {
		if s.Input == params.InputNamelist {
			continue
		}
		groups[string(s.Input)] = append(groups[string(s.Input)], s)
	}
	if len(groups) == 0 {
		return nil, nil
	}

	outDir := artifactDir
	if outDir == "" {
		outDir = filepath.Dir(samplePath)
	}
	artifacts := make(map[string]map[int]string, len(groups))
	for group, specs := range groups {
		template, ok := rf.Templates[group]
		if !ok {
			return nil, params.Configf("ranges file declares %s parameters but no %s template", group, group)
		}
		var w artifact.Writer
		switch params.InputType(group) {
		case params.InputChemMech:
			w = &artifact.ChemWriter{Template: template, OutDir: outDir}
		default:
			w = &artifact.LandParamWriter{Template: template, OutDir: outDir, Group: group}
		}
		paths, err := artifact.GenerateGroup(group, specs, m, w, logger)
		if err != nil {
			return nil, err
		}
		artifacts[group] = paths
	}
	return artifacts, nil
}

// --- build ---

var (
	setupPath string
	baseOnly  bool
	keepExe   bool
	overwrite bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the base case and clone one case per member",
	Long: `Loads the simulation-setup file and the sample file, builds the
base case, then clones and configures one case per ensemble member.
A member failure is reported and the run continues to the next
member; the command exits non-zero if any member failed.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := driver.LoadConfig(setupPath)
	if err != nil {
		return err
	}
	if keepExe {
		cfg.PPE.KeepExe = true
	}
	if overwrite {
		cfg.PPE.Overwrite = true
	}

	f, err := sample.ReadFile(cfg.PPE.SampleFile)
	if err != nil {
		return err
	}
	ensembleMembers, err := ensemble.Assemble(f, cfg.EnsembleConfig(), logger)
	if err != nil {
		return err
	}

	backend := driver.NewExecBackend(cfg.PPE.ScriptsDir, logger)
	d := driver.New(cfg, backend, logger)
	ctx := signalContext()

	if baseOnly {
		return d.BuildBase(ctx)
	}
	report, err := d.BuildEnsemble(ctx, ensembleMembers)
	if err != nil {
		return err
	}
	printReport(report)
	if !report.Ok() {
		return fmt.Errorf("%d of %d members failed", len(report.Failed),
			len(report.Failed)+len(report.Succeeded))
	}
	return nil
}

func printReport(r *driver.Report) {
	fmt.Printf("members succeeded: %d\n", len(r.Succeeded))
	for _, f := range r.Failed {
		fmt.Printf("member %03d failed (%s): %v\n", f.Member, f.CaseRoot, f.Err)
	}
}

// --- check ---

var checkScripts string

var checkCmd = &cobra.Command{
	Use:   "check <casedir>...",
	Short: "Report the build status of case directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend := driver.NewExecBackend(checkScripts, logger)
		statuses := driver.Check(signalContext(), backend, args, logger)
		unbuilt := 0
		for _, s := range statuses {
			switch {
			case s.Err != nil:
				fmt.Printf("%s: status unknown (%v)\n", s.CaseRoot, s.Err)
				unbuilt++
			case s.Built:
				fmt.Printf("%s: built\n", s.CaseRoot)
			default:
				fmt.Printf("%s: not built\n", s.CaseRoot)
				unbuilt++
			}
		}
		if unbuilt > 0 {
			return fmt.Errorf("%d of %d cases not built", unbuilt, len(statuses))
		}
		return nil
	},
}

// --- submit ---

var submitScripts string

var submitCmd = &cobra.Command{
	Use:   "submit <casedir>...",
	Short: "Submit case directories to the scheduler",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend := driver.NewExecBackend(submitScripts, logger)
		results := driver.SubmitCases(signalContext(), backend, args, logger)
		var failed []string
		for _, s := range results {
			if s.Err != nil {
				failed = append(failed, s.CaseRoot)
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("submit failed for: %s", strings.Join(failed, ", "))
		}
		return nil
	},
}

// signalContext cancels on SIGINT or SIGTERM, so a long ensemble run
// stops between members.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase log verbosity (repeatable: info, detailed, debug)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"also write log output to this file")

	sampleCmd.Flags().StringVar(&rangesPath, "ranges", "", "parameter-ranges YAML file")
	sampleCmd.Flags().StringVar(&samplePath, "out", "sample.nc", "sample file to write")
	sampleCmd.Flags().IntVar(&members, "members", 30, "number of sampled ensemble members")
	sampleCmd.Flags().BoolVar(&scramble, "scramble", true, "jitter draws within their strata")
	sampleCmd.Flags().StringVar(&optimization, "optimization", "",
		"hypercube optimization criterion (random-cd or lloyd)")
	sampleCmd.Flags().BoolVar(&excludeDefault, "exclude-default", false,
		"omit the member-zero default row")
	sampleCmd.Flags().BoolVar(&oneAtATime, "one-at-a-time", false,
		"use the one-at-a-time probe design instead of a hypercube")
	sampleCmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed (0 seeds from the clock)")
	sampleCmd.Flags().StringSliceVar(&paramNames, "params", nil,
		"restrict sampling to these parameters")
	sampleCmd.Flags().StringVar(&assumedComp, "component", "cam",
		"component assumed for parameters that declare none")
	sampleCmd.Flags().StringVar(&artifactDir, "artifact-dir", "",
		"directory for generated artifact files (default: the sample file's directory)")
	_ = sampleCmd.MarkFlagRequired("ranges")

	buildCmd.Flags().StringVar(&setupPath, "setup", "", "simulation-setup YAML file")
	buildCmd.Flags().BoolVar(&baseOnly, "base-only", false, "build only the base case")
	buildCmd.Flags().BoolVar(&keepExe, "keepexe", false,
		"reuse the base executable in clones (skips member builds)")
	buildCmd.Flags().BoolVar(&overwrite, "overwrite", false,
		"remove and recreate an existing base case")
	_ = buildCmd.MarkFlagRequired("setup")

	checkCmd.Flags().StringVar(&checkScripts, "scripts-dir", "", "case toolchain scripts directory")
	submitCmd.Flags().StringVar(&submitScripts, "scripts-dir", "", "case toolchain scripts directory")

	rootCmd.AddCommand(sampleCmd, buildCmd, checkCmd, submitCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
