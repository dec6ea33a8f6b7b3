package models

// WarningCode categorizes warnings by subsystem.
// W2xxx = price adjustment, W3xxx = validation.
type WarningCode string

const (
	WarnUnconsumedSplits   WarningCode = "W2001" // price series ends before the final split
	WarnMalformedSplitText WarningCode = "W3001" // ratio text could not be parsed, factor 1 used
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
