package models

import (
	"time"
)

// AuthorBucket holds the activity summary of a single author, as aggregated
// from the git index: when they were first and last seen, and the
// organization and project attached to their first commit.
type AuthorBucket struct {
	AuthorID    string    `json:"author_uuid"`
	FirstCommit time.Time `json:"first_commit"`
	LastCommit  time.Time `json:"last_commit"`
	Org         string    `json:"org"`
	Project     string    `json:"project"`
}

// FirstYear returns the calendar year of the author's first commit.
func (b AuthorBucket) FirstYear() int {
	return b.FirstCommit.UTC().Year()
}

// LastYear returns the calendar year of the author's last commit.
func (b AuthorBucket) LastYear() int {
	return b.LastCommit.UTC().Year()
}

// YearOrgCount is one row of the turnover report: how many distinct authors
// made their first (newcomers) or last (leaving) commit in a given year,
// within a given organization.
type YearOrgCount struct {
	Year      int    `json:"year"`
	Org       string `json:"org"`
	Newcomers int    `json:"newcomers"`
	Leaving   int    `json:"leaving"`
}

// Net is the yearly balance for the organization: newcomers minus people
// leaving.
func (c YearOrgCount) Net() int {
	return c.Newcomers - c.Leaving
}
