package schema

import "time"

const (
	SnapshotCollection = "covid_statistics"

	// SnapshotID is the fixed document id of the single persisted
	// snapshot. Replacing it by id keeps the previous snapshot intact
	// until the new one is fully written.
	SnapshotID = "latest"
)

// CaseRecord is one row of a daily case report, already normalized
// across the two historical column schemas. It only lives between
// fetching and aggregation and is never persisted.
type CaseRecord struct {
	Country     string
	State       string
	CombinedKey string
	Latitude    float64
	Longitude   float64
	Confirmed   int64
	Deaths      int64
	Recovered   int64
}

// CountryReference is one entry of the static country list loaded at
// startup: display name, ISO code, flag asset and default map position.
type CountryReference struct {
	Country     string    `json:"country"`
	Code        string    `json:"code"`
	Flag        string    `json:"flag"`
	Coordinates []float64 `json:"coordinates"`
}

// StateStatistic is one state/province entry inside a country rollup.
type StateStatistic struct {
	Key       string  `json:"key" bson:"key"`
	Name      string  `json:"name" bson:"name"`
	Address   string  `json:"address" bson:"address"`
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	Confirmed int64   `json:"confirmed" bson:"confirmed"`
	Deaths    int64   `json:"deaths" bson:"deaths"`
	Recovered int64   `json:"recovered" bson:"recovered"`
}

// CountryStatistic is one country rollup. Confirmed/Deaths/Recovered
// are summed over every matched record, independent of the name
// deduplication applied to States.
type CountryStatistic struct {
	Country     string           `json:"country" bson:"country"`
	Code        string           `json:"code" bson:"code"`
	Flag        string           `json:"flag" bson:"flag"`
	Coordinates []float64        `json:"coordinates" bson:"coordinates"`
	Confirmed   int64            `json:"confirmed" bson:"confirmed"`
	Deaths      int64            `json:"deaths" bson:"deaths"`
	Recovered   int64            `json:"recovered" bson:"recovered"`
	States      []StateStatistic `json:"states" bson:"states"`
}

// Snapshot is the single persisted document: global totals plus the
// per-country statistics ordered by confirmed count, descending.
type Snapshot struct {
	ID                string             `json:"-" bson:"_id"`
	TotalConfirmed    int64              `json:"total_confirmed" bson:"total_confirmed"`
	TotalDeaths       int64              `json:"total_deaths" bson:"total_deaths"`
	TotalRecovered    int64              `json:"total_recovered" bson:"total_recovered"`
	LastDateUpdated   string             `json:"last_date_updated" bson:"last_date_updated"`
	CountryStatistics []CountryStatistic `json:"country_statistics" bson:"country_statistics"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}
