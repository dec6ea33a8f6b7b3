package importer

import (
	"strconv"
	"strings"
)

// SourceName is the only source this importer accepts
const SourceName = "polygon.io"

// Option keys recognized in Configuration.Options
const (
	OptionMaxParallelization = "Max Parallelization"
	OptionImportFileLocation = "Import File Location"
	OptionImportFilePrefixes = "Import File Prefixes"
	OptionYearsOfData        = "Years of Data"
	OptionMaxPages           = "Max Pages"
)

// Configuration is a parsed import file plus credentials
type Configuration struct {
	Source             string
	APIKey             string
	AccessKey          string
	ImportActions      map[string]string
	ImportFilePrefixes []string
	Options            map[string]string
}

// settings are the options resolved from a Configuration
type settings struct {
	maxParallelization int
	downloadDir        string
	prefixes           []string
	yearsOfData        int // stored negative
	maxPages           int
}

func (c Configuration) option(key string) (string, bool) {
	want := normalizeKey(key)
	for k, v := range c.Options {
		if normalizeKey(k) == want {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

func (c Configuration) intOption(key string) (int, bool, error) {
	v, ok := c.option(key)
	if !ok || v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, &ConfigurationError{Field: key, Message: "expected an integer, got " + strconv.Quote(v)}
	}
	return n, true, nil
}

func (c Configuration) settings() (settings, error) {
	var s settings
	var err error

	if s.maxParallelization, _, err = c.intOption(OptionMaxParallelization); err != nil {
		return s, err
	}
	if s.maxPages, _, err = c.intOption(OptionMaxPages); err != nil {
		return s, err
	}
	years, _, err := c.intOption(OptionYearsOfData)
	if err != nil {
		return s, err
	}
	if years > 0 {
		years = -years
	}
	s.yearsOfData = years

	s.downloadDir, _ = c.option(OptionImportFileLocation)

	s.prefixes = c.ImportFilePrefixes
	if len(s.prefixes) == 0 {
		if v, ok := c.option(OptionImportFilePrefixes); ok {
			s.prefixes = SplitDetails(v)
		}
	}
	return s, nil
}
