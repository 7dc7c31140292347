package enums

type Role string

const (
	RoleOwner     Role = "OWNER"
	RoleModerator Role = "MODERATOR"
	RoleNone      Role = "NONE"
)
