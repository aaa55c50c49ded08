package models

// PermissionRole is a user's role within one tournament.
type PermissionRole string

const (
	RoleAdmin  PermissionRole = "admin"
	RoleMod    PermissionRole = "mod"
	RolePublic PermissionRole = "public"
)

// Permission grants a role on a tournament to a user.
type Permission struct {
	ID           int            `json:"id" db:"id"`
	TournamentID int            `json:"tournament_id" db:"tournament_id"`
	UserID       int            `json:"user_id" db:"user_id"`
	Role         PermissionRole `json:"role" db:"role"`
}

// WhitelistEntry allows a user to race in a tournament.
type WhitelistEntry struct {
	ID           int `json:"id" db:"id"`
	TournamentID int `json:"tournament_id" db:"tournament_id"`
	UserID       int `json:"user_id" db:"user_id"`

	Tournament Ref[Tournament] `json:"-" db:"-"`
	User       Ref[User]       `json:"-" db:"-"`
}
