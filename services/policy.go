package services

import "academy_go/models"

// Role is the authorization tier of a principal. The empty role is the anonymous tier.
type Role string

const (
	RoleSuperadmin Role = models.RoleSuperadmin
	RoleAdmin      Role = models.RoleAdmin
	RoleTeacher    Role = models.RoleTeacher
	RolePublic     Role = ""
)

// Capability names a gated action.
type Capability string

const (
	CapManageAdmins        Capability = "admins:manage"
	CapManageGrades        Capability = "grades:manage"
	CapManageGroups        Capability = "groups:manage"
	CapManageTeachers      Capability = "teachers:manage"
	CapManageStudents      Capability = "students:manage"
	CapManageRegistrations Capability = "registrations:manage"
	CapManageContent       Capability = "content:manage"
	CapViewAdminFeed       Capability = "feed:view"

	CapViewOwnProfile  Capability = "profile:view"
	CapEditTeacherSelf Capability = "teacher_self:edit"
	CapViewTeacherSelf Capability = "teacher_self:view"
	CapLogout          Capability = "session:logout"

	CapBrowsePublic       Capability = "public:browse"
	CapSubmitRegistration Capability = "registrations:submit"
	CapSubmitTestimonial  Capability = "testimonials:submit"
	CapSubmitContact      Capability = "contact:submit"
	CapSubscribe          Capability = "newsletter:subscribe"
)

// tierAuthenticated is satisfied by any valid principal.
const tierAuthenticated Role = "*"

// capabilityTable is the single source for which tier each capability requires.
var capabilityTable = map[Capability]Role{
	CapManageAdmins:        RoleSuperadmin,
	CapManageGrades:        RoleAdmin,
	CapManageGroups:        RoleAdmin,
	CapManageTeachers:      RoleAdmin,
	CapManageStudents:      RoleAdmin,
	CapManageRegistrations: RoleAdmin,
	CapManageContent:       RoleAdmin,
	CapViewAdminFeed:       RoleAdmin,

	CapViewOwnProfile:  tierAuthenticated,
	CapLogout:          tierAuthenticated,
	CapEditTeacherSelf: RoleTeacher,
	CapViewTeacherSelf: RoleTeacher,

	CapBrowsePublic:       RolePublic,
	CapSubmitRegistration: RolePublic,
	CapSubmitTestimonial:  RolePublic,
	CapSubmitContact:      RolePublic,
	CapSubscribe:          RolePublic,
}

// Capabilities lists every capability known to the policy.
func Capabilities() []Capability {
	out := make([]Capability, 0, len(capabilityTable))
	for c := range capabilityTable {
		out = append(out, c)
	}
	return out
}

// IsPublic reports whether cap needs no principal.
func IsPublic(cap Capability) bool {
	req, ok := capabilityTable[cap]
	return ok && req == RolePublic
}

// Allow is the pure policy predicate. Unknown capabilities are denied.
func Allow(role Role, cap Capability) bool {
	required, ok := capabilityTable[cap]
	if !ok {
		return false
	}
	switch required {
	case RolePublic:
		return true
	case tierAuthenticated:
		return role == RoleSuperadmin || role == RoleAdmin || role == RoleTeacher
	case RoleSuperadmin:
		return role == RoleSuperadmin
	case RoleAdmin:
		return role == RoleSuperadmin || role == RoleAdmin
	case RoleTeacher:
		return role == RoleTeacher
	}
	return false
}

// Check applies the policy to an optional principal, distinguishing a missing
// principal from an insufficient one.
func Check(p *Principal, cap Capability) error {
	if IsPublic(cap) {
		return nil
	}
	if p == nil {
		return ErrUnauthenticated
	}
	if !Allow(p.Role, cap) {
		return &Error{Kind: KindForbidden, Field: string(cap)}
	}
	return nil
}
