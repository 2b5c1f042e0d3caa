package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtrends/turnover/internal/models"
)

func bucket(author, org string, firstYear, lastYear int) models.AuthorBucket {
	return models.AuthorBucket{
		AuthorID:    author,
		Org:         org,
		FirstCommit: time.Date(firstYear, 6, 1, 0, 0, 0, 0, time.UTC),
		LastCommit:  time.Date(lastYear, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func findRow(t *testing.T, counts []models.YearOrgCount, year int, org string) models.YearOrgCount {
	t.Helper()
	for _, c := range counts {
		if c.Year == year && c.Org == org {
			return c
		}
	}
	t.Fatalf("no row for year %d org %q in %v", year, org, counts)
	return models.YearOrgCount{}
}

func wideOpts() Options {
	return Options{SinceYear: 2000, TopOrgs: 20}
}

func TestTurnover_NewcomerCounts(t *testing.T) {
	// A and B first seen 2010 in X, C first seen 2011 in Y.
	buckets := []models.AuthorBucket{
		bucket("A", "X", 2010, 2015),
		bucket("B", "X", 2010, 2015),
		bucket("C", "Y", 2011, 2015),
	}

	counts, err := Turnover(buckets, wideOpts())
	require.NoError(t, err)

	assert.Equal(t, 2, findRow(t, counts, 2010, "X").Newcomers)
	assert.Equal(t, 1, findRow(t, counts, 2011, "Y").Newcomers)
}

func TestTurnover_MergeFillsMissingSideWithZero(t *testing.T) {
	buckets := []models.AuthorBucket{
		bucket("A", "X", 2010, 2012),
	}

	counts, err := Turnover(buckets, wideOpts())
	require.NoError(t, err)
	require.Len(t, counts, 2)

	joined := findRow(t, counts, 2010, "X")
	assert.Equal(t, 1, joined.Newcomers)
	assert.Equal(t, 0, joined.Leaving)
	assert.Equal(t, 1, joined.Net())

	left := findRow(t, counts, 2012, "X")
	assert.Equal(t, 0, left.Newcomers)
	assert.Equal(t, 1, left.Leaving)
	assert.Equal(t, -1, left.Net())
}

func TestTurnover_DuplicateAuthorCountsOnce(t *testing.T) {
	buckets := []models.AuthorBucket{
		bucket("A", "X", 2010, 2010),
		bucket("A", "X", 2010, 2010),
		bucket("B", "X", 2010, 2010),
	}

	counts, err := Turnover(buckets, wideOpts())
	require.NoError(t, err)

	row := findRow(t, counts, 2010, "X")
	assert.Equal(t, 2, row.Newcomers)
	assert.Equal(t, 2, row.Leaving)
}

func TestTurnover_CutoffExcludesEarlyYears(t *testing.T) {
	buckets := []models.AuthorBucket{
		bucket("A", "X", 2008, 2008),
		bucket("B", "X", 2009, 2009),
	}

	counts, err := Turnover(buckets, Options{SinceYear: 2008, TopOrgs: 20})
	require.NoError(t, err)

	// 2008 is not strictly greater than the cutoff.
	require.Len(t, counts, 1)
	assert.Equal(t, 2009, counts[0].Year)
	assert.Equal(t, 1, counts[0].Newcomers)
}

func TestTurnover_TopOrgsPerYear(t *testing.T) {
	buckets := []models.AuthorBucket{
		bucket("a1", "X", 2010, 2010),
		bucket("a2", "X", 2010, 2010),
		bucket("a3", "Y", 2010, 2010),
	}

	counts, err := Turnover(buckets, Options{SinceYear: 2000, TopOrgs: 1})
	require.NoError(t, err)

	// Only the top organization of 2010 survives.
	require.Len(t, counts, 1)
	assert.Equal(t, "X", counts[0].Org)
	assert.Equal(t, 2, counts[0].Newcomers)
}

func TestTurnover_SortedByYearThenOrgDescending(t *testing.T) {
	buckets := []models.AuthorBucket{
		bucket("a1", "A", 2010, 2011),
		bucket("a2", "B", 2010, 2010),
		bucket("a3", "C", 2011, 2011),
	}

	counts, err := Turnover(buckets, wideOpts())
	require.NoError(t, err)

	for i := 1; i < len(counts); i++ {
		prev, cur := counts[i-1], counts[i]
		ordered := prev.Year > cur.Year || (prev.Year == cur.Year && prev.Org > cur.Org)
		assert.True(t, ordered, "rows %d and %d out of order: %v %v", i-1, i, prev, cur)
	}
}

func TestTurnover_Empty(t *testing.T) {
	counts, err := Turnover(nil, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 2008, opts.SinceYear)
	assert.Equal(t, 20, opts.TopOrgs)
}
