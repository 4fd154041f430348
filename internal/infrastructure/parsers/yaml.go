package parsers

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLParser parses startups from a YAML sequence.
type YAMLParser struct{}

// Parse reads YAML from the reader and returns parsed startups.
func (p *YAMLParser) Parse(r io.Reader) ([]RawStartup, error) {
	var nodes []yaml.Node
	if err := yaml.NewDecoder(r).Decode(&nodes); err != nil {
		if err == io.EOF {
			return []RawStartup{}, nil
		}
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	startups := make([]RawStartup, 0, len(nodes))
	for i := range nodes {
		var s RawStartup
		if err := nodes[i].Decode(&s); err != nil {
			return nil, fmt.Errorf("line %d: %w", nodes[i].Line, err)
		}
		s.LineNum = nodes[i].Line
		startups = append(startups, s)
	}

	return startups, nil
}
