package pipeline

import (
	"context"
	"time"

	"github.com/covidtrack/covid19-api/external/diseasesh"
	"github.com/covidtrack/covid19-api/external/jhu"
	"github.com/covidtrack/covid19-api/schema"
)

type dailyReportSource struct {
	client jhu.DailyReport
}

// NewDailyReportSource - primary source, the per-date report file
func NewDailyReportSource(client jhu.DailyReport) Source {
	return dailyReportSource{client: client}
}

func (s dailyReportSource) Name() string {
	return "jhu-daily-report"
}

func (s dailyReportSource) Fetch(ctx context.Context, date time.Time) ([]schema.CaseRecord, error) {
	return s.client.Get(ctx, date)
}

type fallbackSource struct {
	client diseasesh.Client
}

// NewFallbackSource - secondary source; serves the latest dataset
// regardless of the requested date.
func NewFallbackSource(client diseasesh.Client) Source {
	return fallbackSource{client: client}
}

func (s fallbackSource) Name() string {
	return "disease.sh"
}

func (s fallbackSource) Fetch(ctx context.Context, _ time.Time) ([]schema.CaseRecord, error) {
	return s.client.Get(ctx)
}
