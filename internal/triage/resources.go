package triage

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRegion is the mandatory fallback entry in the resource table.
const DefaultRegion = "default"

type resourceFile struct {
	Version int                  `yaml:"version"`
	Regions map[string][]Contact `yaml:"regions"`
}

// RegionResourceTable maps a region code to its ordered crisis contacts.
// Immutable after load; the default entry is guaranteed present.
type RegionResourceTable struct {
	Version int
	regions map[string][]Contact
}

// LoadResources reads and validates the region resource file. A missing or
// empty default entry is a configuration error.
func LoadResources(path string) (*RegionResourceTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("triage: read resource file: %w", err)
	}
	return ParseResources(data)
}

// ParseResources builds a RegionResourceTable from raw YAML.
func ParseResources(data []byte) (*RegionResourceTable, error) {
	var file resourceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("triage: decode resource file: %w", err)
	}
	if file.Version <= 0 {
		return nil, fmt.Errorf("triage: resource file missing version")
	}

	table := &RegionResourceTable{
		Version: file.Version,
		regions: make(map[string][]Contact, len(file.Regions)),
	}
	for code, contacts := range file.Regions {
		key := normalizeRegion(code)
		if key == "" {
			return nil, fmt.Errorf("triage: resource region with empty code")
		}
		if len(contacts) == 0 {
			return nil, fmt.Errorf("triage: resource region %q has no contacts", code)
		}
		for _, c := range contacts {
			if strings.TrimSpace(c.Name) == "" {
				return nil, fmt.Errorf("triage: resource region %q has a contact without a name", code)
			}
		}
		table.regions[key] = contacts
	}
	if len(table.regions[DefaultRegion]) == 0 {
		return nil, fmt.Errorf("triage: resource file missing the %q fallback entry", DefaultRegion)
	}
	return table, nil
}

// ResourcesFor returns the ordered crisis contacts for a region, falling
// back to the default entry when the code is unknown or absent. The result
// is never empty.
func (t *RegionResourceTable) ResourcesFor(region string) []Contact {
	if contacts, ok := t.regions[normalizeRegion(region)]; ok {
		return contacts
	}
	return t.regions[DefaultRegion]
}

func normalizeRegion(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	return code
}
