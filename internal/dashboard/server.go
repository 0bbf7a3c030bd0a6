// Package dashboard renders the run report as charts for the operator.
package dashboard

import (
	"net/http"
	"net/url"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/freeebooks/expiredbot/internal/domain"
	"github.com/freeebooks/expiredbot/internal/report"
)

// StartServer serves the charts on port until the process exits.
func StartServer(reportFile string, port string) error {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		records := report.Read(reportFile)

		// 1. Decision breakdown
		pie := charts.NewPie()
		pie.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: "Decisions"}),
			charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		)

		decisionCounts := make(map[domain.Decision]int)
		for _, rec := range records {
			decisionCounts[rec.Decision]++
		}

		var pieItems []opts.PieData
		for decision, count := range decisionCounts {
			pieItems = append(pieItems, opts.PieData{Name: string(decision), Value: count})
		}
		pie.AddSeries("Posts", pieItems)

		// 2. Which sites keep needing human review
		bar := charts.NewBar()
		bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Needs-Review Hosts"}))

		hostCounts := make(map[string]int)
		for _, rec := range records {
			if rec.Decision != domain.DecisionNeedsReview {
				continue
			}
			if u, err := url.Parse(rec.URL); err == nil && u.Hostname() != "" {
				hostCounts[u.Hostname()]++
			}
		}

		var barX []string
		var barY []opts.BarData
		for host, count := range hostCounts {
			barX = append(barX, host)
			barY = append(barY, opts.BarData{Value: count})
		}
		bar.SetXAxis(barX).AddSeries("Posts", barY)

		pie.Render(w)
		bar.Render(w)
	})

	return http.ListenAndServe(":"+port, nil)
}
