package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/s0up4200/fredstat/fred"
)

var (
	orderBy   string
	sortOrder string
	limit     int
)

// releasesCmd represents the releases command
var releasesCmd = &cobra.Command{
	Use:     "releases",
	Short:   "List FRED releases",
	Long:    `List the releases published on FRED, optionally ordered and limited.`,
	PreRunE: initializeApp,
	RunE:    runReleases,
}

// releaseCmd represents the release command
var releaseCmd = &cobra.Command{
	Use:     "release <id>",
	Short:   "Show details for a release",
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runRelease,
}

func init() {
	releasesCmd.Flags().StringVar(&orderBy, "order-by", "release_id", "order by release_id, name, press_release, realtime_start or realtime_end")
	releasesCmd.Flags().StringVar(&sortOrder, "sort", "asc", "sort order (asc/desc)")
	releasesCmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most N releases (0 for all)")

	rootCmd.AddCommand(releasesCmd)
	rootCmd.AddCommand(releaseCmd)
}

func runReleases(cmd *cobra.Command, args []string) error {
	order, err := fred.ParseOrderBy(orderBy)
	if err != nil {
		return err
	}
	sort, err := fred.ParseSortOrder(sortOrder)
	if err != nil {
		return err
	}

	query := fred.ReleasesQuery{OrderBy: order, SortOrder: sort}

	ctx := context.Background()
	var releases []*fred.Release
	if limit > 0 {
		query.Limit = min(limit, fred.DefaultCallLimit)
		releases, err = fredClient.GetReleases(ctx, query)
	} else {
		releases, err = fredClient.GetAllReleases(ctx, query)
	}
	if err != nil {
		return err
	}

	if len(releases) == 0 {
		fmt.Println("No releases found.")
		return nil
	}

	fmt.Printf("Found %d %s:\n\n", len(releases), plural(len(releases), "release", "releases"))

	fmt.Println(strings.Repeat("━", 85))
	fmt.Printf("%-6s %-66s %s\n", "ID", "NAME", "PRESS")
	fmt.Println(strings.Repeat("━", 85))
	for _, r := range releases {
		fmt.Printf("%-6d %-66s %s\n", r.ID, lo.Ellipsis(r.Name, 64), lo.Ternary(r.PressRelease, "yes", ""))
	}
	fmt.Println(strings.Repeat("━", 85))

	return nil
}

func runRelease(cmd *cobra.Command, args []string) error {
	id, err := parseReleaseID(args[0])
	if err != nil {
		return err
	}

	release, err := fredClient.GetRelease(context.Background(), id, time.Time{}, time.Time{})
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", release)
	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("  Press release: %s\n", lo.Ternary(release.PressRelease, "yes", "no"))
	if release.Link != "" {
		fmt.Printf("  Link: %s\n", release.Link)
	}
	if !release.RealtimeStart.IsZero() {
		fmt.Printf("  Real-time period: %s to %s\n",
			release.RealtimeStart.Format(fred.DateLayout), release.RealtimeEnd.Format(fred.DateLayout))
	}
	if release.Notes != "" {
		fmt.Printf("  Notes: %s\n", release.Notes)
	}

	return nil
}

// parseReleaseID parses a positive release id
func parseReleaseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid release id '%s': must be a positive integer", s)
	}
	return id, nil
}

// parseReleaseIDs parses release ids, dropping duplicates but keeping order
func parseReleaseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := parseReleaseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return lo.Uniq(ids), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
