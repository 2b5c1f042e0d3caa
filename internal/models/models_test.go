package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuthorBucket_Years(t *testing.T) {
	b := AuthorBucket{
		FirstCommit: time.Date(2010, 12, 31, 23, 0, 0, 0, time.UTC),
		LastCommit:  time.Date(2015, 1, 1, 0, 30, 0, 0, time.UTC),
	}

	assert.Equal(t, 2010, b.FirstYear())
	assert.Equal(t, 2015, b.LastYear())
}

func TestAuthorBucket_YearsUseUTC(t *testing.T) {
	// A timestamp just past midnight UTC on Jan 1st must stay in the new
	// year regardless of the wall-clock zone it was parsed in.
	zone := time.FixedZone("UTC-5", -5*3600)
	b := AuthorBucket{
		FirstCommit: time.Date(2010, 12, 31, 20, 0, 0, 0, zone), // 2011-01-01T01:00Z
		LastCommit:  time.Date(2011, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, 2011, b.FirstYear())
}

func TestYearOrgCount_Net(t *testing.T) {
	tests := []struct {
		name      string
		newcomers int
		leaving   int
		want      int
	}{
		{"growth", 5, 2, 3},
		{"shrinking", 1, 4, -3},
		{"balanced", 3, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := YearOrgCount{Newcomers: tt.newcomers, Leaving: tt.leaving}
			assert.Equal(t, tt.want, c.Net())
		})
	}
}
