package domain

import "strings"

// Role is the closed platform role enum.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole parses a role value; unknown values are rejected.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleOwner:
		return RoleOwner, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleMember:
		return RoleMember, nil
	default:
		return "", ErrInvalidRole
	}
}

// CanManage reports whether the role may administer tenant resources.
func (r Role) CanManage() bool {
	switch r {
	case RoleOwner, RoleAdmin:
		return true
	case RoleMember:
		return false
	default:
		return false
	}
}

// UserStatus is the closed user lifecycle enum.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInvited  UserStatus = "invited"
	UserDisabled UserStatus = "disabled"
)

// ParseUserStatus parses a status value; unknown values are rejected.
func ParseUserStatus(value string) (UserStatus, error) {
	switch UserStatus(strings.ToLower(strings.TrimSpace(value))) {
	case UserActive:
		return UserActive, nil
	case UserInvited:
		return UserInvited, nil
	case UserDisabled:
		return UserDisabled, nil
	default:
		return "", ErrInvalidStatus
	}
}
