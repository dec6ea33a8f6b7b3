package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/epeers/refsync/internal/importer"
)

// ImportFile is the on-disk description of an import run.
//
//	Source: polygon.io
//	Import Actions:
//	  Purge: "true"
//	  Tickers: stocks, indexes
//	  Splits: stocks
//	  Flat Files: "true"
//	Import File Prefixes:
//	  - us_stocks_sip/day_aggs_v1
//	Options:
//	  Max Parallelization: "4"
//	  Import File Location: /data/polygon
//	  Years of Data: "5"
type ImportFile struct {
	Source             string            `yaml:"Source"`
	ImportActions      map[string]string `yaml:"Import Actions"`
	ImportFilePrefixes []string          `yaml:"Import File Prefixes"`
	Options            map[string]string `yaml:"Options"`
}

// ParseImportFile decodes an import file
func ParseImportFile(data []byte) (*ImportFile, error) {
	var f ImportFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}
	if f.Source == "" {
		return nil, fmt.Errorf("import file has no Source")
	}
	return &f, nil
}

// LoadImportFile reads and decodes the import file at path
func LoadImportFile(path string) (*ImportFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	return ParseImportFile(data)
}

// Configuration combines the file with provider credentials
func (f *ImportFile) Configuration(apiKey, accessKey string) importer.Configuration {
	return importer.Configuration{
		Source:             f.Source,
		APIKey:             apiKey,
		AccessKey:          accessKey,
		ImportActions:      f.ImportActions,
		ImportFilePrefixes: f.ImportFilePrefixes,
		Options:            f.Options,
	}
}
