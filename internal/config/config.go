// Package config resolves an environment selector (preprod or prod) into the
// immutable record every other stack component derives its sizing, naming and
// ARN scoping from.
package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed environments.yaml
var environmentsYAML []byte

// ConfigurationError reports a missing or unrecognized deployment input. It
// is always fatal and must halt the program before any resource is declared.
type ConfigurationError struct {
	Environment string
	Detail      string
}

func (e *ConfigurationError) Error() string {
	if e.Environment == "" {
		return fmt.Sprintf("configuration error: %s", e.Detail)
	}
	return fmt.Sprintf("configuration error for environment %q: %s", e.Environment, e.Detail)
}

// LookupFunc reads an external input by key. os.LookupEnv satisfies it;
// tests substitute a fixture map.
type LookupFunc func(key string) (string, bool)

// Environment is the fully resolved deployment configuration. Constructed
// once per invocation and never mutated afterwards.
type Environment struct {
	Name                string
	AccountID           string
	Region              string
	ResourcePrefix      string
	DBInstanceClass     string
	MultiAZ             bool
	DeletionProtection  bool
	AllocatedStorageGB  int
	BackupRetentionDays int
	AvailabilityZones   int
	NatGateways         int
}

type environmentSpec struct {
	Region              string `yaml:"region"`
	AccountIDVar        string `yaml:"accountIdVar"`
	DBInstanceClass     string `yaml:"dbInstanceClass"`
	MultiAZ             bool   `yaml:"multiAz"`
	DeletionProtection  bool   `yaml:"deletionProtection"`
	AllocatedStorageGB  int    `yaml:"allocatedStorageGb"`
	BackupRetentionDays int    `yaml:"backupRetentionDays"`
	AvailabilityZones   int    `yaml:"availabilityZones"`
	NatGateways         int    `yaml:"natGateways"`
}

type catalog struct {
	Environments map[string]environmentSpec `yaml:"environments"`
}

func loadCatalog() (*catalog, error) {
	var c catalog
	if err := yaml.Unmarshal(environmentsYAML, &c); err != nil {
		return nil, fmt.Errorf("parsing embedded environment catalog: %w", err)
	}
	return &c, nil
}

// Resolve maps an environment name to its configuration. The account ID is
// read through lookup; its absence is fatal so a deploy can never silently
// fall through to another account's resources.
func Resolve(name string, lookup LookupFunc) (*Environment, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}

	spec, ok := cat.Environments[name]
	if !ok {
		return nil, &ConfigurationError{
			Environment: name,
			Detail:      fmt.Sprintf("unrecognized environment (expected one of: %s)", strings.Join(knownNames(cat), ", ")),
		}
	}

	accountID, ok := lookup(spec.AccountIDVar)
	if !ok || strings.TrimSpace(accountID) == "" {
		return nil, &ConfigurationError{
			Environment: name,
			Detail:      fmt.Sprintf("required variable %s is not set; refusing to deploy without an explicit account id", spec.AccountIDVar),
		}
	}

	region := spec.Region
	if override, ok := lookup("NOTES_REGION"); ok && override != "" {
		region = override
	}

	return &Environment{
		Name:                name,
		AccountID:           strings.TrimSpace(accountID),
		Region:              region,
		ResourcePrefix:      "notes-" + name,
		DBInstanceClass:     spec.DBInstanceClass,
		MultiAZ:             spec.MultiAZ,
		DeletionProtection:  spec.DeletionProtection,
		AllocatedStorageGB:  spec.AllocatedStorageGB,
		BackupRetentionDays: spec.BackupRetentionDays,
		AvailabilityZones:   spec.AvailabilityZones,
		NatGateways:         spec.NatGateways,
	}, nil
}

func knownNames(c *catalog) []string {
	names := make([]string, 0, len(c.Environments))
	for name := range c.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
