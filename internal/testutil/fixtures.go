package testutil

import (
	"embed"
	"encoding/json"
	"path"

	"github.com/ruche-hive/ruche/internal/config"
	"github.com/ruche-hive/ruche/internal/node"
)

//go:embed fixtures/*
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// LoadConfigFixture decodes a TOML or YAML config fixture, chosen by
// extension. Defaults are applied; validation is left to the caller.
func LoadConfigFixture(name string) (*config.Config, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Decode(data, path.Ext(name))
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadRecordFixture loads a node record fixture.
func LoadRecordFixture(name string) (*node.Record, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	var rec node.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ValidConfig returns the valid TOML config fixture.
func ValidConfig() (*config.Config, error) {
	return LoadConfigFixture("valid_config.toml")
}

// ValidYAMLConfig returns the valid YAML config fixture.
func ValidYAMLConfig() (*config.Config, error) {
	return LoadConfigFixture("valid_config.yaml")
}

// InvalidConfig returns the invalid config fixture.
func InvalidConfig() (*config.Config, error) {
	return LoadConfigFixture("invalid_config.toml")
}

// ValidRecord returns the valid node record fixture.
func ValidRecord() (*node.Record, error) {
	return LoadRecordFixture("valid_record.json")
}
