package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sergev/cwaepoch/config"
	"github.com/sergev/cwaepoch/cwa"
	"github.com/spf13/cobra"
)

var (
	flagOutput            string
	flagVerbose           bool
	flagEpochPeriod       int
	flagTimeFormat        string
	flagNoFilter          bool
	flagWholeMinute       bool
	flagWholeSecond       bool
	flagStationaryBouts   bool
	flagStationaryStd     float64
	flagXIntercept        float64
	flagYIntercept        float64
	flagZIntercept        float64
	flagXSlope            float64
	flagYSlope            float64
	flagZSlope            float64
	flagXTemp             float64
	flagYTemp             float64
	flagZTemp             float64
	flagMeanTemp          float64
	flagRange             float64
	flagConfigFile        string
)

var decodeCmd = &cobra.Command{
	Use:   "decode INPUT.cwa",
	Short: "Decode a CWA recording into epoch-summary CSV",
	Long: `Decode reads INPUT.cwa as a stream of 512-byte AX3 sectors and writes one
CSV row per emitted epoch to --output (default: INPUT.csv).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecode(args[0])
	},
}

func init() {
	flags := decodeCmd.Flags()
	flags.StringVarP(&flagOutput, "output", "o", "", "destination CSV path (default: derived from input)")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "print progress to stderr")
	flags.IntVar(&flagEpochPeriod, "epoch-period", 0, "seconds per epoch (default from config)")
	flags.StringVar(&flagTimeFormat, "time-format", "", "Go time layout for the Time column (default from config)")
	flags.BoolVar(&flagNoFilter, "no-filter", false, "disable the low-pass filter stage")
	flags.BoolVar(&flagWholeMinute, "whole-minute", false, "align the first epoch to a whole minute")
	flags.BoolVar(&flagWholeSecond, "whole-second", false, "align the first epoch to a whole second")
	flags.BoolVar(&flagStationaryBouts, "stationary-bouts", false, "only emit epochs whose per-axis std is below --stationary-std (forces epoch-period=10)")
	flags.Float64Var(&flagStationaryStd, "stationary-std", 0, "per-axis std threshold for stationary filtering (default from config)")
	flags.Float64Var(&flagXIntercept, "x-intercept", 0, "calibration intercept, x axis")
	flags.Float64Var(&flagYIntercept, "y-intercept", 0, "calibration intercept, y axis")
	flags.Float64Var(&flagZIntercept, "z-intercept", 0, "calibration intercept, z axis")
	flags.Float64Var(&flagXSlope, "x-slope", 0, "calibration slope, x axis")
	flags.Float64Var(&flagYSlope, "y-slope", 0, "calibration slope, y axis")
	flags.Float64Var(&flagZSlope, "z-slope", 0, "calibration slope, z axis")
	flags.Float64Var(&flagXTemp, "x-temp", 0, "calibration temperature coefficient, x axis")
	flags.Float64Var(&flagYTemp, "y-temp", 0, "calibration temperature coefficient, y axis")
	flags.Float64Var(&flagZTemp, "z-temp", 0, "calibration temperature coefficient, z axis")
	flags.Float64Var(&flagMeanTemp, "mean-temp", 0, "mean temperature used by the temperature correction")
	flags.Float64Var(&flagRange, "range", 0, "saturation range in g (default from config)")
	flags.StringVar(&flagConfigFile, "config", "", "TOML file overriding the embedded defaults")

	rootCmd.AddCommand(decodeCmd)
}

func runDecode(inputPath string) error {
	opts, err := config.Default()
	if err != nil {
		return err
	}
	if flagConfigFile != "" {
		opts, err = config.LoadOverride(flagConfigFile, opts)
		if err != nil {
			return err
		}
	}
	opts = mergeFlags(opts)

	outputPath := opts.OutputFile
	if flagOutput != "" {
		outputPath = flagOutput
	}
	if outputPath == "" {
		outputPath = deriveOutputPath(inputPath)
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", inputPath, err)
	}
	defer in.Close()

	var totalBytes int64
	if stat, err := in.Stat(); err == nil {
		totalBytes = stat.Size()
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	defer out.Close()

	orchestrator := cwa.NewOrchestrator(cwa.Config{
		Epoch:       epochConfigFromOptions(opts),
		Calibration: calibrationFromOptions(opts),
		Verbose:     opts.Verbose,
	})

	stats, err := orchestrator.Run(in, out, totalBytes)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", inputPath, err)
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "blocks processed: %d, skipped: %d, duplicates: %d\n",
			stats.BlocksProcessed, stats.BlocksSkipped, stats.DuplicateBlocks)
	}
	fmt.Printf("Decoded %s to %s\n", inputPath, outputPath)
	return nil
}

// mergeFlags overlays any flag explicitly set by the user onto opts,
// applying the embedded-default -> --config file -> flags precedence in
// that order, lowest to highest.
func mergeFlags(opts config.Options) config.Options {
	set := decodeCmd.Flags().Changed

	if set("verbose") {
		opts.Verbose = flagVerbose
	}
	if set("epoch-period") {
		opts.EpochPeriod = flagEpochPeriod
	}
	if set("time-format") {
		opts.TimeFormat = flagTimeFormat
	}
	if set("no-filter") {
		opts.Filter = !flagNoFilter
	}
	if set("whole-minute") {
		opts.StartEpochWholeMinute = flagWholeMinute
	}
	if set("whole-second") {
		opts.StartEpochWholeSecond = flagWholeSecond
	}
	if set("stationary-bouts") {
		opts.GetStationaryBouts = flagStationaryBouts
		opts.EpochPeriod = 10
	}
	if set("stationary-std") {
		opts.StationaryStd = flagStationaryStd
	}
	if set("x-intercept") {
		opts.XIntercept = flagXIntercept
	}
	if set("y-intercept") {
		opts.YIntercept = flagYIntercept
	}
	if set("z-intercept") {
		opts.ZIntercept = flagZIntercept
	}
	if set("x-slope") {
		opts.XSlope = flagXSlope
	}
	if set("y-slope") {
		opts.YSlope = flagYSlope
	}
	if set("z-slope") {
		opts.ZSlope = flagZSlope
	}
	if set("x-temp") {
		opts.XTemp = flagXTemp
	}
	if set("y-temp") {
		opts.YTemp = flagYTemp
	}
	if set("z-temp") {
		opts.ZTemp = flagZTemp
	}
	if set("mean-temp") {
		opts.MeanTemp = flagMeanTemp
	}
	if set("range") {
		opts.Range = flagRange
	}
	if opts.GetStationaryBouts {
		opts.EpochPeriod = 10
	}
	return opts
}

func epochConfigFromOptions(opts config.Options) cwa.EpochConfig {
	return cwa.EpochConfig{
		EpochPeriod:           time.Duration(opts.EpochPeriod) * time.Second,
		UseFilter:             opts.Filter,
		GetStationaryBouts:    opts.GetStationaryBouts,
		StationaryStd:         opts.StationaryStd,
		TimeFormat:            opts.TimeFormat,
		StartEpochWholeMinute: opts.StartEpochWholeMinute,
		StartEpochWholeSecond: opts.StartEpochWholeSecond,
	}
}

func calibrationFromOptions(opts config.Options) cwa.Coefficients {
	return cwa.Coefficients{
		XIntercept: opts.XIntercept,
		YIntercept: opts.YIntercept,
		ZIntercept: opts.ZIntercept,
		XSlope:     opts.XSlope,
		YSlope:     opts.YSlope,
		ZSlope:     opts.ZSlope,
		XTemp:      opts.XTemp,
		YTemp:      opts.YTemp,
		ZTemp:      opts.ZTemp,
		MeanTemp:   opts.MeanTemp,
		Range:      opts.Range,
	}
}

func deriveOutputPath(inputPath string) string {
	base := strings.TrimSuffix(inputPath, ".cwa")
	base = strings.TrimSuffix(base, ".CWA")
	return base + ".csv"
}
