package stats

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/covidtrack/covid19-api/schema"
)

// matches the display format of the original dashboard, e.g. "Tue Apr 28 2020"
const dateDisplayLayout = "Mon Jan 2 2006"

// namespace for state keys; keys must not change between pipeline runs
// so the map client can track markers across refreshes.
var stateKeyNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// StateKey derives a stable identifier for a state entry. The same
// country and state name always yield the same key.
func StateKey(country, name string) string {
	return uuid.NewSHA1(stateKeyNamespace, []byte(country+"|"+name)).String()
}

// Aggregate reduces one day's case records into a snapshot: global
// totals over every record, per-country rollups for the given
// reference countries, countries ordered by confirmed count.
//
// Records matching no reference country still count in the global
// totals. Absent values degrade to zero; Aggregate never fails.
func Aggregate(records []schema.CaseRecord, countries []schema.CountryReference, now time.Time) *schema.Snapshot {
	var totalConfirmed, totalDeaths, totalRecovered int64
	for _, r := range records {
		totalConfirmed += r.Confirmed
		totalDeaths += r.Deaths
		totalRecovered += r.Recovered
	}

	countryStatistics := make([]schema.CountryStatistic, 0, len(countries))
	for _, ref := range countries {
		stat := countryStatistic(ref, records)
		if stat.Confirmed > 0 || stat.Deaths > 0 || stat.Recovered > 0 {
			countryStatistics = append(countryStatistics, stat)
		}
	}

	// stable: equal confirmed counts keep their reference-list order
	sort.SliceStable(countryStatistics, func(i, j int) bool {
		return countryStatistics[i].Confirmed > countryStatistics[j].Confirmed
	})

	return &schema.Snapshot{
		TotalConfirmed:    totalConfirmed,
		TotalDeaths:       totalDeaths,
		TotalRecovered:    totalRecovered,
		LastDateUpdated:   now.Format(dateDisplayLayout),
		CountryStatistics: countryStatistics,
		UpdatedAt:         now,
	}
}

// countryStatistic sums every record reported under the reference
// country and builds its state list. Totals are computed over all
// matched records; the state list is deduplicated by name afterwards,
// so duplicates affect list membership but never the totals.
func countryStatistic(ref schema.CountryReference, records []schema.CaseRecord) schema.CountryStatistic {
	var confirmed, deaths, recovered int64
	states := []schema.StateStatistic{}

	for _, r := range records {
		if r.Country != ref.Country {
			continue
		}

		confirmed += r.Confirmed
		deaths += r.Deaths
		recovered += r.Recovered

		name := r.State
		if name == "" {
			name = ref.Country
		}
		address := r.CombinedKey
		if address == "" {
			address = name
		}

		states = append(states, schema.StateStatistic{
			Key:       StateKey(ref.Country, name),
			Name:      name,
			Address:   address,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Confirmed: r.Confirmed,
			Deaths:    r.Deaths,
			Recovered: r.Recovered,
		})
	}

	return schema.CountryStatistic{
		Country:     ref.Country,
		Code:        ref.Code,
		Flag:        ref.Flag,
		Coordinates: ref.Coordinates,
		Confirmed:   confirmed,
		Deaths:      deaths,
		Recovered:   recovered,
		States:      dedupByName(states),
	}
}

// dedupByName keeps the first entry per display name, preserving the
// original order of the rest.
func dedupByName(states []schema.StateStatistic) []schema.StateStatistic {
	seen := make(map[string]struct{}, len(states))
	deduped := states[:0]
	for _, s := range states {
		if _, ok := seen[s.Name]; ok {
			continue
		}
		seen[s.Name] = struct{}{}
		deduped = append(deduped, s)
	}
	return deduped
}
