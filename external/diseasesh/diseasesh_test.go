package diseasesh_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/covidtrack/covid19-api/external/diseasesh"
)

func TestGet(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/covid-19/jhucsse", r.URL.Path, "wrong endpoint")

		fmt.Fprint(w, `[
			{
				"country": "US",
				"province": "Texas",
				"county": "Travis",
				"updatedAt": "2020-04-28 02:30:32",
				"stats": {"confirmed": 1379, "deaths": 29, "recovered": 0},
				"coordinates": {"latitude": "30.33", "longitude": "-97.78"}
			},
			{
				"country": "Iceland",
				"province": null,
				"updatedAt": "2020-04-28 02:30:32",
				"stats": {"confirmed": 1797, "deaths": 10, "recovered": 1656},
				"coordinates": {"latitude": "64.96", "longitude": "-19.02"}
			}
		]`)
	}))
	defer ts.Close()

	client := diseasesh.New(ts.URL, nil)
	records, err := client.Get(context.Background())

	assert.Nil(t, err, "wrong Get")
	assert.Len(t, records, 2)

	travis := records[0]
	assert.Equal(t, "US", travis.Country)
	assert.Equal(t, "Texas", travis.State)
	assert.Equal(t, "Travis", travis.CombinedKey)
	assert.Equal(t, 30.33, travis.Latitude)
	assert.Equal(t, -97.78, travis.Longitude)
	assert.Equal(t, int64(1379), travis.Confirmed)

	iceland := records[1]
	assert.Equal(t, "", iceland.State, "null province maps to empty state")
	assert.Equal(t, int64(1656), iceland.Recovered)
}

func TestGetUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := diseasesh.New(ts.URL, nil)
	_, err := client.Get(context.Background())

	assert.Error(t, err)
}

func TestGetMalformedPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"not":"an array"}`)
	}))
	defer ts.Close()

	client := diseasesh.New(ts.URL, nil)
	_, err := client.Get(context.Background())

	assert.Error(t, err, "structural parse failure must fail the candidate")
}
