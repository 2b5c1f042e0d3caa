// Package chart renders turnover counts as a line chart.
package chart

import (
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/devtrends/turnover/internal/errors"
	"github.com/devtrends/turnover/internal/models"
)

type yearOrg struct {
	year int
	org  string
}

// Render draws three line+marker series per organization across all years:
// newcomers, people leaving, and the net difference (named after the
// organization alone). The chart is written as a standalone HTML page.
func Render(w io.Writer, counts []models.YearOrgCount, title string) error {
	years, orgs, byKey := index(counts)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1200px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll"}),
	)

	line.SetXAxis(years)
	for _, org := range orgs {
		newcomers := make([]opts.LineData, 0, len(years))
		leaving := make([]opts.LineData, 0, len(years))
		net := make([]opts.LineData, 0, len(years))

		// Years without data for the org plot as zero.
		for _, year := range years {
			row := byKey[yearOrg{year, org}]
			newcomers = append(newcomers, opts.LineData{Value: row.Newcomers})
			leaving = append(leaving, opts.LineData{Value: row.Leaving})
			net = append(net, opts.LineData{Value: row.Net()})
		}

		line.AddSeries(org+" newcomers", newcomers)
		line.AddSeries(org+" leaving", leaving)
		line.AddSeries(org, net)
	}
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
	)

	if err := line.Render(w); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to render chart")
	}
	return nil
}

// index collects the sorted year axis, organizations in input order, and a
// lookup from (year, org) to its row.
func index(counts []models.YearOrgCount) ([]int, []string, map[yearOrg]models.YearOrgCount) {
	byKey := make(map[yearOrg]models.YearOrgCount, len(counts))
	seenYear := make(map[int]bool)
	seenOrg := make(map[string]bool)
	var years []int
	var orgs []string

	for _, c := range counts {
		byKey[yearOrg{c.Year, c.Org}] = c
		if !seenYear[c.Year] {
			seenYear[c.Year] = true
			years = append(years, c.Year)
		}
		if !seenOrg[c.Org] {
			seenOrg[c.Org] = true
			orgs = append(orgs, c.Org)
		}
	}
	sort.Ints(years)
	return years, orgs, byKey
}
