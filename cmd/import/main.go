// Command import loads a stop and timetable catalog into the database, either from
// a directory of CSV files or from a GTFS static zip.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"bus_info/internal/config"
	"bus_info/internal/ingest"
	"bus_info/internal/logger"
)

func main() {
	dir := flag.String("dir", "", "directory holding stops.csv, routes.csv, route_stops.csv and optionally stop_schedules.csv")
	gtfsZip := flag.String("gtfs", "", "GTFS static zip to import instead of CSV files")
	replace := flag.Bool("replace", false, "wipe the existing catalog before loading")
	batchSize := flag.Int("batch", 500, "rows per insert statement")
	flag.Parse()

	if (*dir == "") == (*gtfsZip == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -dir or -gtfs is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	cfg.Log.Stdout = true
	if err := logger.Setup(cfg.Log); err != nil {
		logrus.WithError(err).Fatal("could not set up logging")
	}

	db, err := config.InitDB(cfg.Database, logger.GormLogger(cfg.Log))
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to the database")
	}

	opts := []ingest.LoaderOption{ingest.WithBatchSize(*batchSize)}
	if *replace {
		opts = append(opts, ingest.WithReplace())
	}
	loader := ingest.NewLoader(db, opts...)
	ctx := context.Background()

	var report ingest.Report
	if *gtfsZip != "" {
		report, err = loader.LoadGTFSFile(ctx, *gtfsZip)
	} else {
		bundle, closeAll, openErr := ingest.OpenDir(*dir)
		if openErr != nil {
			logrus.WithError(openErr).Fatal("could not open catalog files")
		}
		report, err = loader.LoadCSV(ctx, bundle)
		if closeErr := closeAll(); closeErr != nil {
			logrus.WithError(closeErr).Warn("closing catalog files")
		}
	}
	if err != nil {
		logrus.WithError(err).Fatal("import failed")
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
}
