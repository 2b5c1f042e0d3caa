// Package report reshapes author activity into yearly turnover counts.
package report

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/devtrends/turnover/internal/errors"
	"github.com/devtrends/turnover/internal/models"
)

// Options control the reporting window
type Options struct {
	SinceYear int // keep years strictly greater than this
	TopOrgs   int // organizations kept per year, ranked by count
}

// DefaultOptions returns the default reporting window
func DefaultOptions() Options {
	return Options{
		SinceYear: 2008,
		TopOrgs:   20,
	}
}

// authorRow is one dataframe row per distinct author
type authorRow struct {
	Author    string `dataframe:"author"`
	FirstYear int    `dataframe:"first_year"`
	LastYear  int    `dataframe:"last_year"`
	Org       string `dataframe:"org"`
}

// Turnover computes newcomer and leaver counts per (year, organization).
// Newcomers are distinct authors whose first commit falls in the year,
// leavers distinct authors whose last commit does. The two series are
// outer-merged, missing counts filled with zero. Rows come back sorted by
// year and organization, both descending.
func Turnover(buckets []models.AuthorBucket, opts Options) ([]models.YearOrgCount, error) {
	if len(buckets) == 0 {
		return nil, nil
	}

	df := dataframe.LoadStructs(authorRows(buckets))
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, errors.ErrorTypeData, "failed to build author frame")
	}

	newcomers, err := countByYear(df, "first_year", "newcomers", opts)
	if err != nil {
		return nil, err
	}
	leaving, err := countByYear(df, "last_year", "leaving", opts)
	if err != nil {
		return nil, err
	}

	merged := newcomers.OuterJoin(leaving, "year", "org")
	if merged.Err != nil {
		return nil, errors.Wrap(merged.Err, errors.ErrorTypeData, "failed to merge turnover series")
	}

	counts := make([]models.YearOrgCount, 0, merged.Nrow())
	for _, row := range merged.Maps() {
		counts = append(counts, models.YearOrgCount{
			Year:      asInt(row["year"]),
			Org:       asString(row["org"]),
			Newcomers: asInt(row["newcomers"]),
			Leaving:   asInt(row["leaving"]),
		})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Year != counts[j].Year {
			return counts[i].Year > counts[j].Year
		}
		return counts[i].Org > counts[j].Org
	})
	return counts, nil
}

// authorRows flattens buckets to rows, dropping duplicate author ids so
// counts stay distinct-author counts whatever the input.
func authorRows(buckets []models.AuthorBucket) []authorRow {
	seen := make(map[string]bool, len(buckets))
	rows := make([]authorRow, 0, len(buckets))
	for _, b := range buckets {
		if seen[b.AuthorID] {
			continue
		}
		seen[b.AuthorID] = true
		rows = append(rows, authorRow{
			Author:    b.AuthorID,
			FirstYear: b.FirstYear(),
			LastYear:  b.LastYear(),
			Org:       b.Org,
		})
	}
	return rows
}

// countByYear groups the author frame by (yearCol, org) and counts authors
// per group, filters to years after the cutoff and keeps the top N
// organizations per year.
func countByYear(df dataframe.DataFrame, yearCol, countCol string, opts Options) (dataframe.DataFrame, error) {
	grouped := df.GroupBy(yearCol, "org")
	if grouped.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(grouped.Err, errors.ErrorTypeData, "group by year failed")
	}

	counts := grouped.Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_COUNT},
		[]string{"author"},
	)
	if counts.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(counts.Err, errors.ErrorTypeData, "author count failed")
	}

	counts = counts.
		Rename("year", yearCol).
		Rename(countCol, "author_COUNT").
		Filter(dataframe.F{Colname: "year", Comparator: series.Greater, Comparando: opts.SinceYear}).
		Arrange(dataframe.RevSort("year"), dataframe.RevSort(countCol))
	if counts.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(counts.Err, errors.ErrorTypeData, "reshaping counts failed")
	}

	return topPerYear(counts, opts.TopOrgs), nil
}

// topPerYear keeps the first n rows of each year. Rows arrive sorted by
// year then count, so within a year this is the top n organizations, ties
// resolved by input order.
func topPerYear(df dataframe.DataFrame, n int) dataframe.DataFrame {
	if df.Nrow() == 0 {
		return df
	}
	kept := make([]int, 0, df.Nrow())
	perYear := make(map[int]int)
	for i, row := range df.Maps() {
		year := asInt(row["year"])
		if perYear[year] < n {
			perYear[year]++
			kept = append(kept, i)
		}
	}
	return df.Subset(kept)
}

// asInt coerces a dataframe cell to int. Cells absent after an outer join
// come back as nil or NaN and count as zero.
func asInt(v interface{}) int {
	switch val := v.(type) {
	case int:
		return val
	case float64:
		if val != val { // NaN
			return 0
		}
		return int(val)
	case string:
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0
		}
		return n
	case nil:
		return 0
	default:
		return 0
	}
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
