// Command validate checks every sweep in a SQLite archive against the grid
// shape invariants: one pixel row per radial, radials+1 azimuths with the
// last value repeated, gates+1 strictly increasing ranges starting at zero,
// and ordered bounds.
//
// Usage:
//
//	go run ./cmd/validate -archive sweeps.db
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/storm-radar-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/storm-radar-etl/internal/domain"
)

func main() {
	path := flag.String("archive", "", "path to the SQLite sweep archive")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), *path); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	archive, err := sqlite.Open(ctx, path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return err
	}
	defer archive.Close()

	var checked int
	var failures []error
	err = archive.Each(ctx, func(s domain.CompactSweep) error {
		checked++
		if err := s.Validate(); err != nil {
			failures = append(failures, err)
			fmt.Printf("  FAIL %s\n", err)
			return nil
		}
		fmt.Printf("  ok   %s %s %s %dx%d\n", s.ID, s.Site, s.ValidTime.Format("2006-01-02T15:04Z"), s.Radials, s.Gates)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("%d sweeps checked, %d failed\n", checked, len(failures))
	if checked == 0 {
		return errors.New("archive is empty")
	}
	return errors.Join(failures...)
}
