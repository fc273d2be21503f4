package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/calib"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/config"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/geom"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/session"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/storage"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/viz"
)

var (
	dataDir      string
	steps        int
	gain         float64
	perturbation float64
	disturbance  string
	amplitude    float64
	gridRows     int
	gridCols     int
	pitch        float64
	configFile   string
	preset       string
	outFile      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aosim",
		Short: "adaptive optics calibration simulator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".aosim", "data directory")

	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "run a closed-loop calibration",
		RunE:  runCalibrate,
	}
	addScenarioFlags(calibrateCmd)

	identifyCmd := &cobra.Command{
		Use:   "identify",
		Short: "build and print the interaction matrix",
		RunE:  runIdentify,
	}
	addScenarioFlags(identifyCmd)

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "trace a beam bundle before and after calibration",
		RunE:  runTrace,
	}
	addScenarioFlags(traceCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a calibration with a live view",
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run's error norm and stroke",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run steps to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&outFile, "out", "", "output path (default <run_id>.csv)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and steps to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outFile, "out", "", "output path (default <run_id>.json)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scenario presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(calibrateCmd, identifyCmd, traceCmd, liveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "scenario preset")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "correction steps")
	cmd.Flags().Float64Var(&gain, "gain", 0, "per-step gain (0 = 1/steps)")
	cmd.Flags().Float64Var(&perturbation, "perturbation", config.DefaultPerturbation, "probe perturbation size")
	cmd.Flags().StringVar(&disturbance, "disturb", "tilt", "disturbance shape")
	cmd.Flags().Float64Var(&amplitude, "amplitude", config.DefaultAmplitude, "disturbance amplitude")
	cmd.Flags().IntVar(&gridRows, "rows", config.DefaultGridRows, "actuator grid rows")
	cmd.Flags().IntVar(&gridCols, "cols", config.DefaultGridCols, "actuator grid cols")
	cmd.Flags().Float64Var(&pitch, "pitch", config.DefaultPitch, "actuator pitch")
}

// buildConfig resolves configuration with the precedence preset < config
// file < explicitly set flags.
func buildConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	scenario := "custom"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
		scenario = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		scenario = "file"
	}

	if cmd.Flags().Changed("steps") {
		cfg.Loop.Steps = steps
	}
	if cmd.Flags().Changed("gain") {
		cfg.Loop.Gain = gain
	}
	if cmd.Flags().Changed("perturbation") {
		cfg.Loop.Perturbation = perturbation
	}
	if cmd.Flags().Changed("disturb") {
		cfg.Disturbance.Shape = disturbance
	}
	if cmd.Flags().Changed("amplitude") {
		cfg.Disturbance.Amplitude = amplitude
	}
	if cmd.Flags().Changed("rows") {
		cfg.Mirror.Rows = gridRows
	}
	if cmd.Flags().Changed("cols") {
		cfg.Mirror.Cols = gridCols
	}
	if cmd.Flags().Changed("pitch") {
		cfg.Mirror.Pitch = pitch
	}

	return cfg, scenario, nil
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	cfg, scenario, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sess, err := session.New(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("calibrating %s (%dx%d actuators, %d steps)...\n",
		scenario, cfg.Mirror.Rows, cfg.Mirror.Cols, cfg.Loop.Steps)
	start := time.Now()

	result, err := sess.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(scenario, sess.Mirror.NumActuators(), cfg.Loop.Steps,
		cfg.Loop.Gain, cfg.Loop.Perturbation, cfg.Disturbance.Shape, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps completed: %d (%s)\n", len(result.States), result.Stop)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func runIdentify(cmd *cobra.Command, args []string) error {
	cfg, _, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	sess, err := session.New(cfg)
	if err != nil {
		return err
	}

	im, err := sess.Identify()
	if err != nil {
		return err
	}

	rows, _ := im.Dims()
	fmt.Printf("interaction matrix (%d actuators x 3):\n", rows)
	fmt.Printf("%.6f\n", mat.Formatted(im))
	return nil
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, _, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	sess, err := session.New(cfg)
	if err != nil {
		return err
	}

	// Cross-shaped bundle around the chief beam, half a pitch apart.
	h := cfg.Mirror.Pitch / 2
	driver := session.NewDriver(sess, [][2]float64{
		{h, 0}, {-h, 0}, {0, h}, {0, -h},
	})

	report, err := driver.Run(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "beam\tbefore\tdisturbed\tcalibrated")
	for i, spot := range report.Spots {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i,
			formatSpot(spot.Before, spot.BeforeOK),
			formatSpot(spot.Disturbed, spot.DisturbedOK),
			formatSpot(spot.Calibrated, spot.CalibratedOK))
	}
	w.Flush()

	fmt.Printf("\ncalibration: %d steps (%s)\n", len(report.Calibration.States), report.Calibration.Stop)
	for name, val := range report.Calibration.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func formatSpot(p geom.Vec3, ok bool) string {
	if !ok {
		return "miss"
	}
	return fmt.Sprintf("(%.5f, %.5f, %.5f)", p.X, p.Y, p.Z)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, _, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	sess, err := session.New(cfg)
	if err != nil {
		return err
	}

	return viz.RunLive(cfg.Loop.Steps, func(obs calib.Observer) (*calib.Result, error) {
		return sess.Run(context.Background(), obs)
	})
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\tscenario\tdisturbance\tactuators\tsteps\tstop\ttimestamp")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			run.ID, run.Scenario, run.Disturbance, run.Actuators, run.Steps, run.Stop,
			run.Timestamp.Format(time.RFC3339))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	records, err := st.LoadSteps(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no step data")
		return nil
	}

	errNorm := make([]float64, len(records))
	stroke := make([]float64, len(records))
	for i, rec := range records {
		errNorm[i] = rec.ErrorNorm
		stroke[i] = rec.MaxAdjustment
	}

	fmt.Println(viz.PlotSeries("error norm", errNorm))
	fmt.Println()
	fmt.Println(viz.PlotSeries("max adjustment", stroke))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]
	path := outFile
	if path == "" {
		path = runID + ".csv"
	}
	st := storage.New(dataDir)
	if err := st.ExportCSV(runID, path); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]
	path := outFile
	if path == "" {
		path = runID + ".json"
	}
	st := storage.New(dataDir)
	if err := st.ExportJSON(runID, path); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}
