package config

import "fmt"

// Error reports an invalid import configuration.
type Error struct {
	Source  string // file name, empty for in-memory sources
	Field   string // qualified field name such as DocumentGroup_1.Title, if any
	Details string
}

func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("Error reading %s: %s", e.Source, e.Details)
	}
	return fmt.Sprintf("Error reading configuration: %s", e.Details)
}
