/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package cron

import (
	"github.com/diagridio/go-calendar-cron/api"
	"github.com/diagridio/go-calendar-cron/schedule"
)

// Loader registers schedules on a cron instance by their common names.
type Loader struct {
	cron api.Interface
}

func NewLoader(cron api.Interface) *Loader {
	return &Loader{cron: cron}
}

// Hourly runs fn at the start of every hour.
func (l *Loader) Hourly(fn api.CallbackFunc) (api.Entry, error) {
	return l.cron.Add("", schedule.Hourly(), fn)
}

// Daily runs fn every day at midnight.
func (l *Loader) Daily(fn api.CallbackFunc) (api.Entry, error) {
	return l.cron.Add("", schedule.Daily(), fn)
}

// Weekly runs fn every Sunday at midnight.
func (l *Loader) Weekly(fn api.CallbackFunc) (api.Entry, error) {
	return l.cron.Add("", schedule.Weekly(), fn)
}

// Monthly runs fn at midnight on the first day of every month.
func (l *Loader) Monthly(fn api.CallbackFunc) (api.Entry, error) {
	return l.cron.Add("", schedule.Monthly(), fn)
}

// Periodic runs fn at every occurrence of the given expression.
func (l *Loader) Periodic(expression string, fn api.CallbackFunc) (api.Entry, error) {
	sched, err := schedule.Parse(expression)
	if err != nil {
		return nil, err
	}
	return l.cron.Add("", sched, fn)
}

// Add runs fn at every occurrence of the given schedule under the given name.
func (l *Loader) Add(name string, sched schedule.Interface, fn api.CallbackFunc) (api.Entry, error) {
	return l.cron.Add(name, sched, fn)
}
