package model

// PlatformRole is the site-wide role supplied by the identity provider.
// Forum-scoped owner/moderator roles layer on top (see Forum).
type PlatformRole string

const (
	RoleUnverified PlatformRole = "unverified"
	RoleDoctor     PlatformRole = "doctor"
	RoleModerator  PlatformRole = "moderator"
	RoleAdmin      PlatformRole = "admin"
)

// IsValidPlatformRole reports whether role is a known platform role.
func IsValidPlatformRole(role string) bool {
	switch PlatformRole(role) {
	case RoleUnverified, RoleDoctor, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Capability decision table. All role checks in the engines go through these
// predicates; no handler or service tests role strings directly.
//
//	capability        unverified  doctor  moderator  admin
//	publish           no          yes     yes        yes
//	moderate (site)   no          no      yes        yes
//	administrate      no          no      no         yes

// CanPublish reports whether the role may create posts and comments.
func CanPublish(role PlatformRole) bool {
	switch role {
	case RoleDoctor, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// CanModerate reports whether the role carries site-wide moderation powers.
func CanModerate(role PlatformRole) bool {
	return role == RoleModerator || role == RoleAdmin
}

// CanAdministrate reports whether the role may perform admin-only operations.
func CanAdministrate(role PlatformRole) bool {
	return role == RoleAdmin
}

// CanModerateForum reports whether a user may moderate within a forum:
// site moderators and admins always can, otherwise the forum owner and the
// forum's appointed moderators.
func CanModerateForum(userID string, role PlatformRole, forum *Forum) bool {
	if CanModerate(role) {
		return true
	}
	if forum == nil {
		return false
	}
	if forum.OwnerID == userID {
		return true
	}
	_, ok := forum.Moderators[userID]
	return ok
}
