package models

import (
	"fmt"
	"time"
)

// Season is a competition year identified by its start year.
// The 2021 season runs July 1 2021 through June 30 2022.
type Season struct {
	StartYear int `json:"start_year"`
}

// Label returns the display form of the season, e.g. "2021/22".
func (s Season) Label() string {
	return fmt.Sprintf("%d/%02d", s.StartYear, (s.StartYear+1)%100)
}

// WindowStart returns the first day of the season's date window.
func (s Season) WindowStart() time.Time {
	return time.Date(s.StartYear, time.July, 1, 0, 0, 0, 0, time.UTC)
}

// WindowEnd returns the last day of the season's date window.
func (s Season) WindowEnd() time.Time {
	return time.Date(s.StartYear+1, time.June, 30, 23, 59, 59, 0, time.UTC)
}

// Contains reports whether t falls inside the season's date window.
func (s Season) Contains(t time.Time) bool {
	return !t.Before(s.WindowStart()) && !t.After(s.WindowEnd())
}

// Team is a club discovered under a single season.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Player is discovered under a (season, team) pair. ID is the durable
// key; the same real-world player recurs across seasons as distinct
// Player values sharing the same ID. Slug is the URL-safe name form
// used to build detail-page URLs.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
