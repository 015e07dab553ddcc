package jhu

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/covidtrack/covid19-api/schema"
)

const (
	defaultURL = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_daily_reports"

	// report files are named by date, e.g. 04-28-2020.csv
	dateLayout = "01-02-2006"

	logPrefix = "jhu"
)

var (
	errRequestFailed = fmt.Errorf("daily report request failed")
)

// DailyReport fetches one day's case report from the JHU CSSE daily
// report repository.
type DailyReport interface {
	Get(ctx context.Context, date time.Time) ([]schema.CaseRecord, error)
}

type dailyReport struct {
	url    string
	client *http.Client
}

// New - daily report client. An empty url selects the JHU CSSE
// repository; a nil client falls back to http.DefaultClient.
func New(url string, client *http.Client) DailyReport {
	u := defaultURL
	if url != "" {
		u = url
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &dailyReport{
		url:    u,
		client: client,
	}
}

// Get downloads the report for the given date into a temporary file,
// parses it and removes the file whether or not parsing succeeded.
func (d dailyReport) Get(ctx context.Context, date time.Time) ([]schema.CaseRecord, error) {
	fileName := date.Format(dateLayout) + ".csv"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", d.url, fileName), nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"file":   fileName,
			"status": resp.StatusCode,
		}).Warn("daily report not available")
		return nil, errRequestFailed
	}

	tmp, err := ioutil.TempFile("", "daily-report-*.csv")
	if err != nil {
		return nil, err
	}
	defer func() {
		tmp.Close()
		if err := os.Remove(tmp.Name()); err != nil {
			log.WithFields(log.Fields{"prefix": logPrefix, "file": tmp.Name()}).Warnf("remove temp file with error: %s", err)
		}
	}()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return nil, err
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	return ParseDailyReport(tmp)
}
