package domain

import "strings"

// ApplicationStatus is the closed application lifecycle enum.
type ApplicationStatus string

const (
	ApplicationActive  ApplicationStatus = "active"
	ApplicationRetired ApplicationStatus = "retired"
)

// ParseApplicationStatus parses a status value; unknown values are rejected.
func ParseApplicationStatus(value string) (ApplicationStatus, error) {
	switch ApplicationStatus(strings.ToLower(strings.TrimSpace(value))) {
	case ApplicationActive:
		return ApplicationActive, nil
	case ApplicationRetired:
		return ApplicationRetired, nil
	default:
		return "", ErrInvalidStatus
	}
}
