package schema

// GeoJSON - point geometry, [longitude, latitude]
type GeoJSON struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// MarkerProperties carries the per-marker attributes rendered by the
// map client.
type MarkerProperties struct {
	Key        string `json:"key"`
	Country    string `json:"country"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Confirmed  int64  `json:"confirmed"`
	Deaths     int64  `json:"deaths"`
	Recovered  int64  `json:"recovered"`
	TotalCases int64  `json:"total_cases"`
}

type Feature struct {
	Type       string           `json:"type"`
	Geometry   GeoJSON          `json:"geometry"`
	Properties MarkerProperties `json:"properties"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
