package services

import (
	"errors"
	"testing"
)

func TestAllowTable(t *testing.T) {
	tests := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleSuperadmin, CapManageAdmins, true},
		{RoleAdmin, CapManageAdmins, false},
		{RoleTeacher, CapManageAdmins, false},
		{RolePublic, CapManageAdmins, false},

		{RoleSuperadmin, CapManageStudents, true},
		{RoleAdmin, CapManageStudents, true},
		{RoleTeacher, CapManageStudents, false},
		{RolePublic, CapManageStudents, false},

		{RoleSuperadmin, CapEditTeacherSelf, false},
		{RoleAdmin, CapEditTeacherSelf, false},
		{RoleTeacher, CapEditTeacherSelf, true},

		{RoleTeacher, CapViewOwnProfile, true},
		{RoleAdmin, CapViewOwnProfile, true},
		{RolePublic, CapViewOwnProfile, false},

		{RolePublic, CapSubmitRegistration, true},
		{RoleTeacher, CapBrowsePublic, true},

		{RoleSuperadmin, Capability("unknown:thing"), false},
	}

	for _, tt := range tests {
		if got := Allow(tt.role, tt.cap); got != tt.want {
			t.Errorf("Allow(%q, %q) = %v, want %v", tt.role, tt.cap, got, tt.want)
		}
	}
}

func TestSuperadminSatisfiesEverythingAdminDoes(t *testing.T) {
	for _, c := range Capabilities() {
		if Allow(RoleAdmin, c) && !Allow(RoleSuperadmin, c) {
			t.Errorf("capability %q allowed for admin but not superadmin", c)
		}
	}
}

func TestGatedCapabilitiesDenyAnonymous(t *testing.T) {
	for _, c := range Capabilities() {
		if IsPublic(c) {
			continue
		}
		if Allow(RolePublic, c) {
			t.Errorf("non-public capability %q allowed for anonymous caller", c)
		}
	}
}

func TestCheckDistinguishesMissingFromInsufficient(t *testing.T) {
	if err := Check(nil, CapManageGrades); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("nil principal: got %v, want unauthenticated", err)
	}

	teacher := &Principal{ID: "t1", Role: RoleTeacher}
	if err := Check(teacher, CapManageGrades); !errors.Is(err, ErrForbidden) {
		t.Fatalf("teacher on admin capability: got %v, want forbidden", err)
	}

	admin := &Principal{ID: "a1", Role: RoleAdmin}
	if err := Check(admin, CapManageAdmins); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin on superadmin capability: got %v, want forbidden", err)
	}
	if err := Check(admin, CapManageGrades); err != nil {
		t.Fatalf("admin on admin capability: unexpected %v", err)
	}

	if err := Check(nil, CapSubmitContact); err != nil {
		t.Fatalf("public capability should not need a principal: %v", err)
	}
}
