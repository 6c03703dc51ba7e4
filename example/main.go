package main

import (
	"context"
	"fmt"
	"time"

	"github.com/diagridio/go-calendar-cron/cron"
	"github.com/diagridio/go-calendar-cron/schedule"
)

func main() {
	c, err := cron.New(cron.Options{})
	if err != nil {
		panic(err)
	}

	loader := cron.NewLoader(c)

	// Every two seconds. Occurrences missed while a callback is running are
	// dropped.
	_, err = loader.Periodic("*/2 * * * * *", func(_ context.Context, occurrence time.Time) error {
		fmt.Println("every 2s", occurrence.Format(time.RFC3339))
		return nil
	})
	if err != nil {
		panic(err)
	}

	// Every third second of the last day of the month, catching up on missed
	// occurrences.
	_, err = loader.Periodic("*/3 * * * -1 * d", func(_ context.Context, occurrence time.Time) error {
		fmt.Println("last day of the month", occurrence.Format(time.RFC3339))
		return nil
	})
	if err != nil {
		panic(err)
	}

	sched, err := schedule.Parse("@hourly")
	if err != nil {
		panic(err)
	}
	entry, err := loader.Add("hourly", sched, func(context.Context, time.Time) error {
		return nil
	})
	if err != nil {
		panic(err)
	}

	now := time.Now()
	fmt.Println("next hourly occurrence", schedule.Next(entry.Schedule(), now).Format(time.RFC3339))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := c.Run(ctx); err != nil {
		panic(err)
	}
}
