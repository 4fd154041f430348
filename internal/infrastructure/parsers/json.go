package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses startups from a JSON array, or from an object whose
// "startups" key holds the array (the shape of an exported registry).
type JSONParser struct{}

type startupFile struct {
	Startups []RawStartup `json:"startups"`
}

// Parse reads JSON from the reader and returns parsed startups.
func (p *JSONParser) Parse(r io.Reader) ([]RawStartup, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}
	data = bytes.TrimSpace(data)

	var startups []RawStartup
	if len(data) > 0 && data[0] == '{' {
		var file startupFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		startups = file.Startups
	} else if err := json.Unmarshal(data, &startups); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Array position, 1-indexed
	for i := range startups {
		startups[i].LineNum = i + 1
	}

	return startups, nil
}
