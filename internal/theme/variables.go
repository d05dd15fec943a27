package theme

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseVariables extracts <name>value</name> pairs from every <variables>
// block of an EmulationStation theme document. Nested markup inside a
// variable is ignored; later definitions override earlier ones.
func ParseVariables(r io.Reader) (map[string]string, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	vars := make(map[string]string)
	var (
		inVariables bool
		depth       int // depth below <variables>
		name        string
		value       strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return vars, nil
		}
		if err != nil {
			return vars, fmt.Errorf("failed to parse theme variables: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case !inVariables && t.Name.Local == "variables":
				inVariables = true
				depth = 0
			case inVariables:
				depth++
				if depth == 1 {
					name = t.Name.Local
					value.Reset()
				}
			}
		case xml.EndElement:
			if !inVariables {
				continue
			}
			if depth == 0 {
				inVariables = false
				continue
			}
			if depth == 1 && name != "" {
				vars[name] = strings.TrimSpace(value.String())
				name = ""
			}
			depth--
		case xml.CharData:
			if inVariables && depth == 1 {
				value.Write(t)
			}
		}
	}
}

// parseVariablesFile parses path, treating a missing file as empty.
func parseVariablesFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	vars, err := ParseVariables(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vars, nil
}
