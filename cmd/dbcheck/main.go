// Command dbcheck reports data problems in the events database and, with
// -fix, removes orphaned registrations.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Shivanand-hulikatti/campus-events/internal/config"
	"github.com/Shivanand-hulikatti/campus-events/internal/database"
	"github.com/Shivanand-hulikatti/campus-events/internal/logger"
	"github.com/Shivanand-hulikatti/campus-events/internal/service"
)

// errUnhealthy makes the process exit with status 2 when problems remain.
var errUnhealthy = errors.New("consistency problems found")

func main() {
	fix := flag.Bool("fix", false, "delete orphaned registrations")
	flag.Parse()

	if err := run(*fix); err != nil {
		fmt.Fprintf(os.Stderr, "dbcheck: %v\n", err)
		if errors.Is(err, errUnhealthy) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(fix bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, "text")
	ctx := context.Background()

	store, err := database.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	checker := service.NewConsistencyChecker(store, service.WithLogger(log))
	if fix {
		res, err := checker.Repair(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d orphaned registration(s)\n", res.OrphansRemoved)
	}

	report, err := checker.Check(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if !report.Healthy() {
		return errUnhealthy
	}
	return nil
}
