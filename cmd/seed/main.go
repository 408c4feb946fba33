// Command seed inserts a handful of sample events.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/config"
	"github.com/Shivanand-hulikatti/campus-events/internal/database"
	"github.com/Shivanand-hulikatti/campus-events/internal/logger"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
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

	svc := service.NewEventService(store, service.WithLogger(log))
	for _, req := range sampleEvents(time.Now()) {
		ev, err := svc.CreateEvent(ctx, req)
		if err != nil {
			return fmt.Errorf("seed %q: %w", req.Title, err)
		}
		fmt.Printf("%s  %s  %-28s capacity=%d\n", ev.ID, ev.Date, ev.Title, ev.Capacity)
	}
	return nil
}

func sampleEvents(now time.Time) []model.EventRequest {
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(model.DateLayout)
	}
	return []model.EventRequest{
		{Title: "Freshers Welcome Fair", Date: day(3), Location: "Main Quad", Description: "Clubs and societies showcase", Capacity: 200},
		{Title: "Intro to Go Workshop", Date: day(7), Location: "CS Lab 2", Description: "Hands-on session, bring a laptop", Capacity: 25},
		{Title: "Career Panel: Alumni in Tech", Date: day(10), Location: "Auditorium B", Description: "Q&A with recent graduates", Capacity: 80},
		{Title: "Hackathon Kickoff", Date: day(14), Location: "Innovation Hub", Description: "48 hours, teams of four", Capacity: 60},
	}
}
