package jhu

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/covidtrack/covid19-api/schema"
)

// The daily reports switched column naming partway through: early
// files use slash-joined headers (Country/Region), later ones use
// underscores (Country_Region). Per field, the first present alias
// wins.
var (
	countryAliases   = []string{"Country_Region", "Country/Region"}
	stateAliases     = []string{"Province_State", "Province/State"}
	combinedAliases  = []string{"Combined_Key", "Admin2"}
	latitudeAliases  = []string{"Lat", "Latitude"}
	longitudeAliases = []string{"Long_", "Longitude"}
	confirmedAliases = []string{"Confirmed"}
	deathsAliases    = []string{"Deaths"}
	recoveredAliases = []string{"Recovered"}
)

var errUnknownHeader = fmt.Errorf("no recognizable report header")

type columnIndex struct {
	country   int
	state     int
	combined  int
	latitude  int
	longitude int
	confirmed int
	deaths    int
	recovered int
}

// ParseDailyReport reads a daily report CSV into case records. A row
// that cannot be parsed is dropped; only a structurally unreadable
// payload (broken reader, unrecognizable header) fails the call.
func ParseDailyReport(r io.Reader) ([]schema.CaseRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read report header: %w", err)
	}

	idx := indexHeader(header)
	if idx.country < 0 {
		return nil, errUnknownHeader
	}

	records := []schema.CaseRecord{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if _, ok := err.(*csv.ParseError); ok {
				// single malformed row, drop it
				continue
			}
			return nil, err
		}

		country := field(row, idx.country)
		if country == "" {
			continue
		}

		records = append(records, schema.CaseRecord{
			Country:     country,
			State:       field(row, idx.state),
			CombinedKey: field(row, idx.combined),
			Latitude:    parseFloat(field(row, idx.latitude)),
			Longitude:   parseFloat(field(row, idx.longitude)),
			Confirmed:   parseCount(field(row, idx.confirmed)),
			Deaths:      parseCount(field(row, idx.deaths)),
			Recovered:   parseCount(field(row, idx.recovered)),
		})
	}

	return records, nil
}

func indexHeader(header []string) columnIndex {
	position := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\uFEFF")
		}
		position[strings.TrimSpace(name)] = i
	}

	find := func(aliases []string) int {
		for _, a := range aliases {
			if i, ok := position[a]; ok {
				return i
			}
		}
		return -1
	}

	return columnIndex{
		country:   find(countryAliases),
		state:     find(stateAliases),
		combined:  find(combinedAliases),
		latitude:  find(latitudeAliases),
		longitude: find(longitudeAliases),
		confirmed: find(confirmedAliases),
		deaths:    find(deathsAliases),
		recovered: find(recoveredAliases),
	}
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseCount coerces a count cell to an integer. Missing or
// unparseable values count as zero, never as a row failure.
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
