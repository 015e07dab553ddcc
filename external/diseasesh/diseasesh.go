package diseasesh

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/covidtrack/covid19-api/schema"
)

const (
	defaultURL = "https://disease.sh"
	logPrefix  = "diseasesh"
)

var errRequestFailed = fmt.Errorf("disease.sh request failed")

// Client fetches the latest per-province case data from the disease.sh
// aggregation API. It serves as the structured fallback when no daily
// report file is published yet.
type Client interface {
	Get(ctx context.Context) ([]schema.CaseRecord, error)
}

type client struct {
	url        string
	httpClient *http.Client
}

// New - disease.sh client. An empty url selects the public instance;
// a nil httpClient falls back to http.DefaultClient.
func New(url string, httpClient *http.Client) Client {
	u := defaultURL
	if url != "" {
		u = url
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &client{
		url:        u,
		httpClient: httpClient,
	}
}

type provinceStats struct {
	Confirmed int64 `json:"confirmed"`
	Deaths    int64 `json:"deaths"`
	Recovered int64 `json:"recovered"`
}

type provinceCoordinates struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

type provinceRecord struct {
	Country     string              `json:"country"`
	Province    string              `json:"province"`
	County      string              `json:"county"`
	Stats       provinceStats       `json:"stats"`
	Coordinates provinceCoordinates `json:"coordinates"`
}

func (c client) Get(ctx context.Context) ([]schema.CaseRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/v3/covid-19/jhucsse", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithFields(log.Fields{"prefix": logPrefix, "status": resp.StatusCode}).Warn("jhucsse not available")
		return nil, errRequestFailed
	}

	b, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var provinces []provinceRecord
	if err := json.Unmarshal(b, &provinces); err != nil {
		return nil, fmt.Errorf("parse jhucsse response: %w", err)
	}

	records := make([]schema.CaseRecord, 0, len(provinces))
	for _, p := range provinces {
		if p.Country == "" {
			continue
		}
		records = append(records, schema.CaseRecord{
			Country:     p.Country,
			State:       p.Province,
			CombinedKey: p.County,
			Latitude:    parseCoordinate(p.Coordinates.Latitude),
			Longitude:   parseCoordinate(p.Coordinates.Longitude),
			Confirmed:   p.Stats.Confirmed,
			Deaths:      p.Stats.Deaths,
			Recovered:   p.Stats.Recovered,
		})
	}

	return records, nil
}

// coordinates arrive as decimal strings
func parseCoordinate(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
