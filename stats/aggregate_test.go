package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/covidtrack/covid19-api/schema"
)

var aggregateTestCountries = []schema.CountryReference{
	{Country: "US", Code: "us", Flag: "flags/us.svg", Coordinates: []float64{37.09, -95.71}},
	{Country: "Italy", Code: "it", Flag: "flags/it.svg", Coordinates: []float64{41.87, 12.56}},
	{Country: "Iceland", Code: "is", Flag: "flags/is.svg", Coordinates: []float64{64.96, -19.02}},
}

func TestAggregateGlobalTotals(t *testing.T) {
	records := []schema.CaseRecord{
		{Country: "US", Confirmed: 10, Deaths: 1, Recovered: 2},
		{Country: "Italy", Confirmed: 20, Deaths: 3, Recovered: 4},
		// matches no reference country, still counts globally
		{Country: "Atlantis", Confirmed: 5, Deaths: 5, Recovered: 5},
	}

	s := Aggregate(records, aggregateTestCountries, time.Now())

	assert.Equal(t, int64(35), s.TotalConfirmed, "wrong total confirmed")
	assert.Equal(t, int64(9), s.TotalDeaths, "wrong total deaths")
	assert.Equal(t, int64(11), s.TotalRecovered, "wrong total recovered")

	for _, c := range s.CountryStatistics {
		assert.NotEqual(t, "Atlantis", c.Country, "unmatched row must not produce a country")
	}
}

func TestAggregateCountryTotalsBeforeDedup(t *testing.T) {
	records := []schema.CaseRecord{
		{Country: "US", State: "A", Confirmed: 1},
		{Country: "US", State: "A", Confirmed: 5},
		{Country: "US", State: "B", Confirmed: 2},
	}

	s := Aggregate(records, aggregateTestCountries, time.Now())

	assert.Len(t, s.CountryStatistics, 1, "wrong country count")
	us := s.CountryStatistics[0]

	// totals include every matched record, dedup only trims the list
	assert.Equal(t, int64(8), us.Confirmed, "wrong country confirmed")

	assert.Len(t, us.States, 2, "wrong state count after dedup")
	assert.Equal(t, "A", us.States[0].Name)
	assert.Equal(t, int64(1), us.States[0].Confirmed, "first occurrence must win")
	assert.Equal(t, "B", us.States[1].Name)
	assert.Equal(t, int64(2), us.States[1].Confirmed)
}

func TestAggregateCountryInclusion(t *testing.T) {
	records := []schema.CaseRecord{
		{Country: "US"},
		{Country: "Italy", Deaths: 1},
	}

	s := Aggregate(records, aggregateTestCountries, time.Now())

	assert.Len(t, s.CountryStatistics, 1, "all-zero country must be excluded")
	assert.Equal(t, "Italy", s.CountryStatistics[0].Country)
}

func TestAggregateSortStable(t *testing.T) {
	records := []schema.CaseRecord{
		{Country: "US", Confirmed: 5},
		{Country: "Italy", Confirmed: 10},
		{Country: "Iceland", Confirmed: 5},
	}

	s := Aggregate(records, aggregateTestCountries, time.Now())

	assert.Len(t, s.CountryStatistics, 3)
	assert.Equal(t, "Italy", s.CountryStatistics[0].Country, "wrong sort order")
	// equal confirmed counts keep reference-list order
	assert.Equal(t, "US", s.CountryStatistics[1].Country, "unstable sort")
	assert.Equal(t, "Iceland", s.CountryStatistics[2].Country, "unstable sort")
}

func TestAggregateNameFallbacks(t *testing.T) {
	records := []schema.CaseRecord{
		{Country: "Iceland", Confirmed: 1},
		{Country: "US", State: "Texas", CombinedKey: "Travis, Texas, US", Confirmed: 1},
	}

	s := Aggregate(records, aggregateTestCountries, time.Now())
	assert.Len(t, s.CountryStatistics, 2)

	var us, iceland schema.CountryStatistic
	for _, c := range s.CountryStatistics {
		switch c.Country {
		case "US":
			us = c
		case "Iceland":
			iceland = c
		}
	}

	// no state field: display name falls back to the country name,
	// address falls back to the display name
	assert.Equal(t, "Iceland", iceland.States[0].Name)
	assert.Equal(t, "Iceland", iceland.States[0].Address)

	assert.Equal(t, "Texas", us.States[0].Name)
	assert.Equal(t, "Travis, Texas, US", us.States[0].Address)
}

func TestAggregateSnapshotMetadata(t *testing.T) {
	now := time.Date(2020, time.April, 28, 12, 0, 0, 0, time.UTC)

	s := Aggregate(nil, aggregateTestCountries, now)

	assert.Equal(t, "Tue Apr 28 2020", s.LastDateUpdated, "wrong display date")
	assert.Equal(t, now, s.UpdatedAt)
	assert.Empty(t, s.CountryStatistics)
}

func TestStateKeyDeterministic(t *testing.T) {
	assert.Equal(t, StateKey("US", "Texas"), StateKey("US", "Texas"), "key must be stable across runs")
	assert.NotEqual(t, StateKey("US", "Texas"), StateKey("US", "Utah"))
	assert.NotEqual(t, StateKey("US", "Texas"), StateKey("Italy", "Texas"))
}
