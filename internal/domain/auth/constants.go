package auth

const (
	RoleAdmin      = "admin"
	RoleTeamMember = "team_member"

	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)
