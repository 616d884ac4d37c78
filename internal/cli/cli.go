// Package cli wires the lagtrack command-line interface, grounded in
// internal/cmd/cmd.go's package-level cobra.Command pattern: a Root
// command with a --config persistent flag and a small set of
// subcommands, each reading the config file once in its RunE rather than
// through a shared Cfg wrapper (this module's CLI surface is a fraction
// of inmaputil/cmd.go's, so the lighter of the teacher's two patterns is
// the fit).
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oceanmodel/lagtrack/config"
	"github.com/oceanmodel/lagtrack/driver"
	"github.com/oceanmodel/lagtrack/factory"
	"github.com/oceanmodel/lagtrack/field"
	"github.com/oceanmodel/lagtrack/internal/diagio"
	"github.com/oceanmodel/lagtrack/internal/meshio"
	"github.com/oceanmodel/lagtrack/internal/seedio"
)

// Version is set at build time via -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// These variables specify configuration flags (spec §6: SIMULATION,
// NUMERICS, BOUNDARY_CONDITIONS and GENERAL keys come from configFile; the
// remaining flags name the out-of-core collaborators spec §1 leaves
// external: the grid file, the field-data file, the particle seed file
// and the output trajectory file).
var (
	configFile string
	meshFile   string
	dataFile   string
	dataFormat string
	seedFile   string
	outFile    string
	tEnd       float64
)

func init() {
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)

	Root.PersistentFlags().StringVar(&configFile, "config", "./lagtrack.toml", "configuration file location")

	runCmd.Flags().StringVar(&meshFile, "mesh", "", "unstructured mesh topology file (netCDF)")
	runCmd.Flags().StringVar(&dataFile, "data", "", "time-varying field data file (netCDF)")
	runCmd.Flags().StringVar(&dataFormat, "format", "fvcom", "field data format: fvcom, roms or gotm")
	runCmd.Flags().StringVar(&seedFile, "seed", "", "initial particle positions (CSV: id,group_id,x,y,z)")
	runCmd.Flags().StringVar(&outFile, "out", "trajectory.csv", "trajectory output file (CSV)")
	runCmd.Flags().Float64Var(&tEnd, "tend", 0, "simulation end time, in the same units as the field data's time axis")
	runCmd.MarkFlagRequired("mesh")
	runCmd.MarkFlagRequired("data")
	runCmd.MarkFlagRequired("seed")
}

// Root is the main command.
var Root = &cobra.Command{
	Use:           "lagtrack",
	Short:         "An offline Lagrangian particle tracker for unstructured-mesh ocean models.",
	Long:          `lagtrack advects and diffuses particles through a pre-computed ocean circulation field on an unstructured triangular mesh. Use the subcommands below to run a simulation or print the build version.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lagtrack v%s\n", Version)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a particle-tracking simulation.",
	Long: `run reads a resolved configuration, an unstructured mesh, a
time-varying field-data file and a seed file, then advances every
particle from t=0 to --tend, writing a trajectory snapshot to --out after
every timestep.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context())
	},
}

// Run executes the run subcommand's body; split out of runCmd.RunE so it
// can be exercised without going through cobra's flag parsing.
func Run(ctx context.Context) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("lagtrack: %v", err)
	}

	m, err := meshio.LoadNetCDF(meshFile, meshio.NetCDFVars{})
	if err != nil {
		return fmt.Errorf("lagtrack: %v", err)
	}

	loader, err := openLoader(dataFormat, dataFile)
	if err != nil {
		return fmt.Errorf("lagtrack: %v", err)
	}

	depth := field.Sigma
	if cfg.Simulation.DepthCoordinates == config.DepthCartesian {
		depth = field.Cartesian
	}
	src := field.NewSampler(m, loader, depth, cfg.Simulation.AllowBeaching)

	particles, err := seedio.ReadCSV(seedFile, m)
	if err != nil {
		return fmt.Errorf("lagtrack: %v", err)
	}
	if err := src.ReadData(0); err != nil {
		return fmt.Errorf("lagtrack: %v", err)
	}
	for _, p := range particles {
		if err := src.SetLocalCoordinates(0, p); err != nil {
			return fmt.Errorf("lagtrack: particle %d: %v", p.ID, err)
		}
	}

	nm, err := factory.NumMethod(cfg)
	if err != nil {
		return fmt.Errorf("lagtrack: %v", err)
	}

	model := driver.NewModel(m, src, nm, particles, cfg.Simulation.TimeStep, 1, cfg.Simulation.AllowBeaching)

	out, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("lagtrack: creating %s: %v", outFile, err)
	}
	defer out.Close()
	writer := diagio.NewCSVWriter(out)
	logLine := driver.Log(os.Stdout)

	recordAndLog := func(t float64, model *driver.Model) error {
		diags, err := model.Diagnostics(t)
		if err != nil {
			return err
		}
		if err := writer.Write(t, diags); err != nil {
			return err
		}
		return logLine(t, model)
	}

	return model.Run(ctx, 0, tEnd, recordAndLog)
}

func openLoader(format, path string) (field.Loader, error) {
	switch format {
	case "fvcom":
		return field.NewFVCOMLoader(path, nil)
	case "roms":
		return field.NewROMSLoader(path, nil)
	case "gotm":
		return field.NewGOTMLoader(path, nil)
	default:
		return nil, fmt.Errorf("unrecognised data format %q", format)
	}
}
