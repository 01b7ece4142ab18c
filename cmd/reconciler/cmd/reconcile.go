package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/dvillagrablanco/inmova-app-sub030/cmd/reconciler/config"
	"github.com/dvillagrablanco/inmova-app-sub030/internal/augment"
	"github.com/dvillagrablanco/inmova-app-sub030/internal/reconciler"
	"github.com/dvillagrablanco/inmova-app-sub030/internal/reporter"
	"github.com/dvillagrablanco/inmova-app-sub030/internal/store"
	"github.com/dvillagrablanco/inmova-app-sub030/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconcile command
var (
	dbPath          string
	limit           int
	apply           bool
	useAugmentation bool
	outputFormat    string
	outputFile      string
	dateTolerance   int
	applyThreshold  int
	augmentTimeout  time.Duration
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Match bank transactions against open rent obligations",
	Long: `Reconcile lists unmatched bank transactions and open rent obligations from
the backing store, pairs them by amount and supporting signals, and reports a
ranked set of match suggestions.

Without --apply the run is read-only. With --apply, suggestions at or above
the automatic-apply threshold transition the transaction to reconciled and the
obligation to paid atomically; everything else stays advisory.

Examples:
  # Read-only suggestion run
  reconciler reconcile --db rents.db

  # Apply confident matches
  reconciler reconcile --db rents.db --apply

  # Fill gaps with the external assistant, JSON output
  reconciler reconcile --db rents.db --apply --use-augmentation --output json

  # Tune thresholds
  reconciler reconcile --db rents.db --date-tolerance 3 --apply-threshold 90`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Required flags
	reconcileCmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite store (required)")

	// Batch flags
	reconcileCmd.Flags().IntVarP(&limit, "limit", "l", 200, "maximum records listed per side (0 = no limit)")
	reconcileCmd.Flags().BoolVar(&apply, "apply", false, "apply suggestions at or above the threshold")
	reconcileCmd.Flags().BoolVar(&useAugmentation, "use-augmentation", false, "fill rule-based gaps with the external assistant")

	// Output flags
	reconcileCmd.Flags().StringVarP(&outputFormat, "output", "f", "console", "output format: console, json, csv")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Matching configuration flags
	reconcileCmd.Flags().IntVarP(&dateTolerance, "date-tolerance", "d", 5, "date bonus tolerance in days")
	reconcileCmd.Flags().IntVar(&applyThreshold, "apply-threshold", 85, "minimum confidence for automatic application")
	reconcileCmd.Flags().DurationVar(&augmentTimeout, "augment-timeout", 20*time.Second, "timeout for the augmentation call")

	// Mark required flags
	reconcileCmd.MarkFlagRequired("db")

	// Bind flags to viper
	viper.BindPFlag("db", reconcileCmd.Flags().Lookup("db"))
	viper.BindPFlag("limit", reconcileCmd.Flags().Lookup("limit"))
	viper.BindPFlag("apply", reconcileCmd.Flags().Lookup("apply"))
	viper.BindPFlag("use-augmentation", reconcileCmd.Flags().Lookup("use-augmentation"))
	viper.BindPFlag("output", reconcileCmd.Flags().Lookup("output"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("date-tolerance", reconcileCmd.Flags().Lookup("date-tolerance"))
	viper.BindPFlag("apply-threshold", reconcileCmd.Flags().Lookup("apply-threshold"))
	viper.BindPFlag("augment-timeout", reconcileCmd.Flags().Lookup("augment-timeout"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	dbPath = viper.GetString("db")
	limit = viper.GetInt("limit")
	apply = viper.GetBool("apply")
	useAugmentation = viper.GetBool("use-augmentation")
	outputFormat = viper.GetString("output")
	outputFile = viper.GetString("output-file")
	dateTolerance = viper.GetInt("date-tolerance")
	applyThreshold = viper.GetInt("apply-threshold")

	if dbPath == "" {
		return fmt.Errorf("db is required")
	}

	if _, err := reporter.ParseFormat(outputFormat); err != nil {
		return err
	}

	if applyThreshold < 0 || applyThreshold > 100 {
		return fmt.Errorf("apply-threshold must be between 0 and 100: %d", applyThreshold)
	}

	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	if verbose {
		log, err := logger.NewLogger(logger.DebugConfig())
		if err != nil {
			return err
		}
		logger.SetGlobalLogger(log)
	}

	engineConfig, err := config.CreateEngineConfig(dateTolerance, applyThreshold, augmentTimeout)
	if err != nil {
		return err
	}

	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	var suggestor augment.Suggestor
	if useAugmentation {
		suggestor, err = config.CreateSuggestor()
		if err != nil {
			// Missing augmentation configuration degrades to rule-based only.
			logger.GetGlobalLogger().WithError(err).Warn("Augmentation unavailable, continuing rule-based only")
			suggestor = nil
		}
	}

	engine := reconciler.NewEngine(engineConfig, suggestor, st)
	service := reconciler.NewService(engine, st)

	report, err := service.Run(cmd.Context(), reconciler.RunOptions{
		Limit:           limit,
		Apply:           apply,
		UseAugmentation: useAugmentation,
	})
	if err != nil {
		return err
	}

	format, err := reporter.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return reporter.NewReporter(format).Write(out, report)
}
