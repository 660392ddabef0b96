package domain

import "strings"

// TenantStatus is the closed tenant lifecycle enum.
type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
	TenantArchived  TenantStatus = "archived"
)

// ParseTenantStatus parses a status value; unknown values are rejected.
func ParseTenantStatus(value string) (TenantStatus, error) {
	switch TenantStatus(strings.ToLower(strings.TrimSpace(value))) {
	case TenantActive:
		return TenantActive, nil
	case TenantSuspended:
		return TenantSuspended, nil
	case TenantArchived:
		return TenantArchived, nil
	default:
		return "", ErrInvalidStatus
	}
}

// AddressType is the closed address kind enum.
type AddressType string

const (
	AddressBilling  AddressType = "billing"
	AddressShipping AddressType = "shipping"
	AddressOffice   AddressType = "office"
)

// ParseAddressType parses an address type; unknown values are rejected.
func ParseAddressType(value string) (AddressType, error) {
	switch AddressType(strings.ToLower(strings.TrimSpace(value))) {
	case AddressBilling:
		return AddressBilling, nil
	case AddressShipping:
		return AddressShipping, nil
	case AddressOffice:
		return AddressOffice, nil
	default:
		return "", ErrInvalidAddressType
	}
}
