package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/s0up4200/fredstat/filter"
	"github.com/s0up4200/fredstat/fred"
)

// seriesCmd represents the series command
var seriesCmd = &cobra.Command{
	Use:   "series <release-id>...",
	Short: "List the series of one or more releases",
	Long: `Fetch every series published by the given releases and print them.

Releases are fetched concurrently (fred.concurrency). Series can be narrowed
down with a filter expression, a preset from the config, or the configured
default expression.`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: initializeApp,
	RunE:    runSeries,
}

func init() {
	seriesCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	seriesCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")

	rootCmd.AddCommand(seriesCmd)
}

func runSeries(cmd *cobra.Command, args []string) error {
	ids, err := parseReleaseIDs(args)
	if err != nil {
		return err
	}

	expr, err := getFilterExpression(cfg.Filter, filterExpr, preset)
	if err != nil {
		return err
	}

	var compiled filter.CompiledFilter
	if expr != "" {
		compiled, err = filters.Compile(expr)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
		logger.Info().Str("filter", expr).Msg("Filtering series")
	}

	ctx := context.Background()

	releases := make([]*fred.Release, 0, len(ids))
	for _, id := range ids {
		release, err := fredClient.GetRelease(ctx, id, time.Time{}, time.Time{})
		if err != nil {
			return err
		}
		releases = append(releases, release)
	}

	start := time.Now()
	results, err := fred.LoadSeries(ctx, releases, cfg.Fred.Concurrency)
	if err != nil {
		return err
	}

	logger.Debug().
		Int("releases", len(results)).
		Int("series", lo.SumBy(results, func(r fred.ReleaseSeries) int { return len(r.Series) })).
		Dur("elapsed", time.Since(start)).
		Msg("Loaded release series")

	var shown int
	for _, rs := range results {
		series := rs.Series
		if compiled != nil {
			series, err = filters.Apply(ctx, compiled, series)
			if err != nil {
				return err
			}
		}
		shown += len(series)
		printSeries(rs.Release, series, len(rs.Series))
	}

	if len(results) > 1 {
		fmt.Printf("\nTotal: %d series across %d releases\n", shown, len(results))
	}

	return nil
}

func printSeries(release *fred.Release, series []fred.Series, total int) {
	fmt.Printf("\n%s: %d of %d series\n", release, len(series), total)
	if len(series) == 0 {
		return
	}

	fmt.Println(strings.Repeat("━", 100))
	fmt.Printf("%-22s %-5s %-5s %-5s %s\n", "ID", "FREQ", "ADJ", "POP", "TITLE")
	fmt.Println(strings.Repeat("━", 100))
	for _, s := range series {
		fmt.Printf("%-22s %-5s %-5s %-5d %s\n",
			s.ID, s.FrequencyShort, s.SeasonalAdjustmentShort, s.Popularity, lo.Ellipsis(s.Title, 60))
	}
}
