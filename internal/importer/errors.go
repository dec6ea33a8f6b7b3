package importer

import "fmt"

// ConfigurationError reports an import configuration that cannot be run
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "invalid import configuration: " + e.Message
	}
	return fmt.Sprintf("invalid import configuration (%s): %s", e.Field, e.Message)
}
