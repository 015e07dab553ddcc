package schema

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
)

// LoadCountryList reads the static country reference list. It is
// called once at process start and the result is treated as read-only
// for the process lifetime.
func LoadCountryList(path string) ([]CountryReference, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read country list: %w", err)
	}

	var countries []CountryReference
	if err := json.Unmarshal(b, &countries); err != nil {
		return nil, fmt.Errorf("parse country list: %w", err)
	}

	if len(countries) == 0 {
		return nil, fmt.Errorf("country list is empty")
	}

	return countries, nil
}
