package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/fredstat/config"
	"github.com/s0up4200/fredstat/filter"
	"github.com/s0up4200/fredstat/fred"
)

var (
	cfgFile    string
	cfg        *config.Config
	logger     zerolog.Logger
	fredClient *fred.Client
	filters    *filter.Manager

	// Command flags
	filterExpr string
	preset     string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fredstat",
	Short: "Browse FRED releases and the series they publish",
	Long: `fredstat is a CLI for the Federal Reserve Economic Data (FRED) API.
It lists releases, shows release details and fetches every series of one
or more releases, optionally narrowed down with filter expressions.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.AddCommand(testCmd)
}

// initializeApp loads configuration and creates the FRED client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	opts, err := clientOptions(cfg.Fred)
	if err != nil {
		return err
	}

	fredClient, err = fred.NewClient(cfg.Fred.APIKey, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create FRED client: %w", err)
	}

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter.PresetExpressions()); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	return nil
}

// clientOptions maps the fred config section onto client options
func clientOptions(fc config.FredConfig) ([]fred.Option, error) {
	bounds, err := fred.ParseFollowUpBounds(fc.FollowUpBounds)
	if err != nil {
		return nil, err
	}

	opts := []fred.Option{
		fred.WithBaseURL(fc.URL),
		fred.WithCallLimit(fc.CallLimit),
		fred.WithMaxPages(fc.MaxPages),
		fred.WithFollowUpBounds(bounds),
	}
	if fc.Timeout > 0 {
		opts = append(opts, fred.WithTimeout(fc.Timeout))
	}

	return opts, nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Escape codes only make sense on a terminal
	color := cfg.Color && (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !color,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:     "test",
	Short:   "Test connection to FRED",
	Long:    `Test the connection to the FRED API and validate the configured API key.`,
	PreRunE: initializeApp,
	RunE:    runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to FRED at %s...\n", cfg.Fred.URL)

	// Connection is already tested during client creation
	fmt.Println("✓ Connection successful!")

	ctx := context.Background()
	releases, err := fredClient.GetReleases(ctx, fred.ReleasesQuery{Limit: 1})
	if err != nil {
		return fmt.Errorf("failed to get releases: %w", err)
	}

	fmt.Printf("\nFRED Settings:\n")
	fmt.Printf("- Page size: %d\n", fredClient.CallLimit())
	fmt.Printf("- Max pages per release: %s\n", maxPagesString(cfg.Fred.MaxPages))
	fmt.Printf("- Follow-up bounds: %s\n", cfg.Fred.FollowUpBounds)
	if len(releases) > 0 {
		fmt.Printf("- First release: %s\n", releases[0])
	}

	names := filters.ListFilters()
	if len(names) > 0 {
		fmt.Printf("\nFilter presets:\n")
		for _, name := range names {
			fmt.Printf("  • %s: %s\n", name, cfg.Filter.Presets[name].Description)
		}
	}

	return nil
}

func maxPagesString(n int) string {
	if n == 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", n)
}

// getFilterExpression determines the filter expression to use.
// An empty result with a nil error means no filtering.
func getFilterExpression(fc config.FilterConfig, expr, presetName string) (string, error) {
	// Priority: command line filter > preset > default
	if expr != "" {
		return expr, nil
	}

	if presetName != "" {
		if p, ok := fc.Presets[presetName]; ok {
			return p.Expression, nil
		}
		return "", fmt.Errorf("preset '%s' not found in config", presetName)
	}

	return fc.DefaultExpression, nil
}
