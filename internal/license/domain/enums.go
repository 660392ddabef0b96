package domain

import "strings"

// LicenseStatus is the closed license lifecycle enum.
type LicenseStatus string

const (
	LicenseActive    LicenseStatus = "active"
	LicenseSuspended LicenseStatus = "suspended"
)

// ParseLicenseStatus parses a status value; unknown values are rejected.
func ParseLicenseStatus(value string) (LicenseStatus, error) {
	switch LicenseStatus(strings.ToLower(strings.TrimSpace(value))) {
	case LicenseActive:
		return LicenseActive, nil
	case LicenseSuspended:
		return LicenseSuspended, nil
	default:
		return "", ErrInvalidStatus
	}
}
