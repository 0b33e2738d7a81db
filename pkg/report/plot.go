package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/devrank/pkg/rating"
)

const (
	plotPageTitle = "devrank"
	chartWidth    = "100%"
	chartHeight   = "500px"
	factorStack   = "factors"
	labelRotate   = 30
)

func writePlot(w io.Writer, r *Report) error {
	labels := make([]string, len(r.UsefulnessRating))
	for i, sc := range r.UsefulnessRating {
		labels[i] = sc.Name
		if labels[i] == "" {
			labels[i] = sc.Identity
		}
	}

	page := components.NewPage()
	page.PageTitle = plotPageTitle
	page.AddCharts(
		scoreChart(r, labels),
		factorChart(r, labels),
		activityChart(r),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render plot report: %w", err)
	}

	return nil
}

func baseBar(title, subtitle, yAxis string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Top: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: labelRotate}}),
		charts.WithYAxisOpts(opts.YAxis{Name: yAxis}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)

	return bar
}

func scoreChart(r *Report, labels []string) *charts.Bar {
	bar := baseBar("Usefulness score", r.Metadata.Repository, "score")
	bar.SetXAxis(labels)

	data := make([]opts.BarData, len(r.UsefulnessRating))
	for i, sc := range r.UsefulnessRating {
		data[i] = opts.BarData{Value: sc.Score}
	}

	bar.AddSeries("score", data)

	return bar
}

// factorChart stacks each factor's weighted contribution per developer.
func factorChart(r *Report, labels []string) *charts.Bar {
	bar := baseBar("Score composition", "weighted factor contributions", "points")
	bar.SetXAxis(labels)

	for _, f := range rating.Factors {
		data := make([]opts.BarData, len(r.UsefulnessRating))
		for i, sc := range r.UsefulnessRating {
			data[i] = opts.BarData{Value: sc.Factors[f.OutputKey] * r.WeightsUsed[f.Name]}
		}

		bar.AddSeries(f.OutputKey, data, charts.WithBarChartOpts(opts.BarChart{Stack: factorStack}))
	}

	return bar
}

// activityChart plots the team's commits per month.
func activityChart(r *Report) *charts.Line {
	months := sortedKeys(r.TeamStats.CommitDistribution)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Team activity", Subtitle: "commits per month"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "commits"}),
	)
	line.SetXAxis(months)

	data := make([]opts.LineData, len(months))
	for i, m := range months {
		data[i] = opts.LineData{Value: r.TeamStats.CommitDistribution[m]}
	}

	line.AddSeries("commits", data, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.3)}))

	return line
}
