// Command genmock writes synthetic radar fixtures for local development and
// can serve them over the data-access gateway routes, so nexrad and radar-etl
// run without a live EDEX server.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/fixtures.json
//	go run ./cmd/genmock -in data/mock/fixtures.json -serve :9581
//
// Then point RADAR_DATA_URL at http://localhost:9581.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/storm-radar-etl/internal/mock"
)

// Site coordinates for the generated fixtures.
var sites = map[string][2]float64{
	"kmux": {37.155, -121.898},
	"kdax": {38.501, -121.678},
	"ktlx": {35.333, -97.278},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "read fixtures from this JSON file instead of generating them")
	out := flag.String("out", "", "write generated fixtures to this JSON file")
	serve := flag.String("serve", "", "serve fixtures on this address")
	siteList := flag.String("sites", "kmux,kdax,ktlx", "comma-separated sites to generate")
	records := flag.Int("records", 3, "records per site")
	radials := flag.Int("radials", 360, "radials per record")
	gates := flag.Int("gates", 230, "gates per radial")
	flag.Parse()

	if *out == "" && *serve == "" {
		flag.Usage()
		return errors.New("at least one of -out or -serve is required")
	}

	var fixtures []mock.Fixture
	if *in != "" {
		var err error
		if fixtures, err = mock.LoadFixtures(*in); err != nil {
			return err
		}
	} else {
		// Fixed start time for reproducible fixtures.
		start := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
		for _, site := range strings.Split(*siteList, ",") {
			site = strings.ToLower(strings.TrimSpace(site))
			loc, ok := sites[site]
			if !ok {
				return fmt.Errorf("no coordinates for site %q", site)
			}
			fixtures = append(fixtures, mock.SyntheticFixture(site, loc[0], loc[1], start, *records, *radials, *gates))
		}
	}

	if *out != "" {
		if err := mock.WriteFixtures(*out, fixtures); err != nil {
			return err
		}
		fmt.Printf("wrote %d fixtures to %s\n", len(fixtures), *out)
	}

	if *serve != "" {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		srv := &http.Server{
			Addr:              *serve,
			Handler:           mock.NewGateway(logger, fixtures...),
			ReadHeaderTimeout: 10 * time.Second,
		}
		logger.Info("mock gateway listening", "addr", *serve, "sites", len(fixtures))
		return srv.ListenAndServe()
	}
	return nil
}
