package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID        ID
	SweepID      ID
	ScenarioName ID
	StageName    ID
)

// String conversions for domain IDs
func (id RunID) String() string       { return ID(id).String() }
func (id SweepID) String() string     { return ID(id).String() }
func (n ScenarioName) String() string { return ID(n).String() }
func (n StageName) String() string    { return ID(n).String() }

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseScenarioName parses a string into ScenarioName
func ParseScenarioName(s string) (ScenarioName, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("scenario name cannot be empty")
	}
	return ScenarioName(s), nil
}

// ParseStageName parses a string into StageName
func ParseStageName(s string) (StageName, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("stage name cannot be empty")
	}
	return StageName(s), nil
}
