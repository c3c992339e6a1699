// Package fred provides a client for the Federal Reserve Economic Data (FRED) API.
//
// The package models economic releases and the series published in them. A
// Release is loaded by the Client and fetches its series lazily: the first call
// to GetSeries pages through fred/release/series and the result is kept for the
// lifetime of the Release.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := fred.NewClient("your-32-character-api-key", logger,
//		fred.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	releases, err := client.GetReleases(ctx, fred.ReleasesQuery{OrderBy: fred.OrderByName})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for s, err := range releases[0].All(ctx) {
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(s.ID, s.Title)
//	}
//
// # Pagination
//
// Series are requested CallLimit at a time until a page comes back short. The
// first page uses the release's real-time period. Later pages use today's date
// for both bounds unless the client is built with WithFollowUpBounds(BoundsRelease).
// WithMaxPages caps the number of pages; reaching the cap returns ErrPageLimit.
//
// # Error Handling
//
// Non-200 responses are returned as *APIError. Its Unwrap maps onto
// ErrUnauthorized and ErrNotFound, so errors.Is works through the wrapping
// added by GetSeries and the client methods.
package fred
