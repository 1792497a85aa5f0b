package mapping

import (
	"fmt"
	"os"

	"github.com/sddportal/backend/internal/domain/account"
	"gopkg.in/yaml.v3"
)

// DefaultProfile is the profile name used when an account has no mapping
const DefaultProfile = "default"

// profilesFile is the on-disk YAML layout:
//
//	profiles:
//	  default:
//	    amount: Amount
//	    iban: IBAN
type profilesFile struct {
	Profiles map[string]map[string]string `yaml:"profiles"`
}

// Profiles is a set of named field mappings
type Profiles struct {
	byName map[string]account.FieldMapping
}

// NewProfiles builds profiles from in-memory mappings
func NewProfiles(byName map[string]account.FieldMapping) *Profiles {
	p := &Profiles{byName: make(map[string]account.FieldMapping, len(byName))}
	for name, m := range byName {
		p.byName[name] = m
	}
	return p
}

// LoadProfiles reads and validates a YAML profile file
func LoadProfiles(path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping profiles: %w", err)
	}
	return ParseProfiles(data)
}

// ParseProfiles parses YAML profile content
func ParseProfiles(data []byte) (*Profiles, error) {
	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse mapping profiles: %w", err)
	}

	byName := make(map[string]account.FieldMapping, len(file.Profiles))
	for name, fields := range file.Profiles {
		m := account.FieldMapping(fields)
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("mapping profile %q: %w", name, err)
		}
		byName[name] = m
	}
	return NewProfiles(byName), nil
}

// Get returns the named profile
func (p *Profiles) Get(name string) (account.FieldMapping, bool) {
	if p == nil || name == "" {
		return nil, false
	}
	m, ok := p.byName[name]
	return m, ok
}

// Len returns the number of loaded profiles
func (p *Profiles) Len() int {
	if p == nil {
		return 0
	}
	return len(p.byName)
}
