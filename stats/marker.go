package stats

import "github.com/covidtrack/covid19-api/schema"

// Markers derives the GeoJSON point layer from a snapshot. A state is
// included only with non-zero coordinates and at least one positive
// count.
func Markers(snapshot *schema.Snapshot) *schema.FeatureCollection {
	features := []schema.Feature{}

	for _, country := range snapshot.CountryStatistics {
		for _, state := range country.States {
			if state.Latitude == 0 || state.Longitude == 0 {
				continue
			}
			if state.Confirmed <= 0 && state.Deaths <= 0 && state.Recovered <= 0 {
				continue
			}

			features = append(features, schema.Feature{
				Type: "Feature",
				Geometry: schema.GeoJSON{
					Type:        "Point",
					Coordinates: []float64{state.Longitude, state.Latitude},
				},
				Properties: schema.MarkerProperties{
					Key:        state.Key,
					Country:    country.Country,
					Name:       state.Name,
					Address:    state.Address,
					Confirmed:  state.Confirmed,
					Deaths:     state.Deaths,
					Recovered:  state.Recovered,
					TotalCases: state.Confirmed + state.Deaths + state.Recovered,
				},
			})
		}
	}

	return &schema.FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
