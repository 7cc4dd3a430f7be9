package services

import (
	"testing"

	"academy_go/models"
)

func countRows(t *testing.T, f *fixture, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestHasherFailureLeavesNoTeacher(t *testing.T) {
	f := newFixture(t)
	teachers := NewTeacherService(f.store, brokenHasher{}, f.objects, UploadRules{})

	_, err := teachers.Create(f.ctx, TeacherInput{FullName: "Ann", Email: "ann@academy.test", Password: "secret123", SubjectsTaught: []string{"Math"}})
	assertKind(t, err, KindUpstreamFailure)
	if n := countRows(t, f, &models.Teacher{}); n != 0 {
		t.Fatalf("teachers = %d after failed create", n)
	}

	existing := f.teacher(t, "bob@academy.test", "Math")
	password := "another-secret"
	_, err = teachers.Update(f.ctx, existing.ID, TeacherUpdate{Password: &password})
	assertKind(t, err, KindUpstreamFailure)
	stored, err := f.teachers.Get(f.ctx, existing.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Password != existing.Password {
		t.Fatal("password digest changed after failed update")
	}

	_, err = NewAdminService(f.store, brokenHasher{}).Create(f.ctx, AdminInput{FullName: "Office", Email: "office@academy.test", Password: "officepass"})
	assertKind(t, err, KindUpstreamFailure)
	if n := countRows(t, f, &models.User{}); n != 0 {
		t.Fatalf("users = %d after failed create", n)
	}
}

func TestObjectStoreFailureLeavesTeacherUnchanged(t *testing.T) {
	f := newFixture(t)
	tc := f.teacher(t, "ann@academy.test", "Math")
	teachers := NewTeacherService(f.store, testHasher, brokenObjects{}, UploadRules{})
	upload := FileUpload{Filename: "me.jpg", Data: []byte("jpeg")}

	_, err := teachers.ReplacePhoto(f.ctx, tc.ID, upload)
	assertKind(t, err, KindUpstreamFailure)
	_, err = teachers.AddGalleryImage(f.ctx, tc.ID, upload)
	assertKind(t, err, KindUpstreamFailure)

	stored, err := f.teachers.Get(f.ctx, tc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.PhotoKey != "" || stored.PhotoURL != "" {
		t.Fatalf("photo recorded after failed upload: %q", stored.PhotoKey)
	}
	if n := countRows(t, f, &models.TeacherImage{}); n != 0 {
		t.Fatalf("images = %d after failed upload", n)
	}
}

func TestGalleryWriteFailureDiscardsUpload(t *testing.T) {
	f := newFixture(t)
	tc := f.teacher(t, "ann@academy.test", "Math")
	teachers := NewTeacherService(imageRejectingStore{f.store}, testHasher, f.objects, UploadRules{})

	_, err := teachers.AddGalleryImage(f.ctx, tc.ID, FileUpload{Filename: "a.png", Data: []byte("png")})
	assertKind(t, err, KindUpstreamFailure)
	if f.objects.Len() != 0 {
		t.Fatalf("objects = %d, uploaded image was not discarded", f.objects.Len())
	}
	if n := countRows(t, f, &models.TeacherImage{}); n != 0 {
		t.Fatalf("images = %d", n)
	}
}

func TestFailedObjectCleanupDoesNotFailDelete(t *testing.T) {
	f := newFixture(t)
	tc := f.teacher(t, "ann@academy.test", "Math")
	if _, err := f.teachers.AddGalleryImage(f.ctx, tc.ID, FileUpload{Filename: "a.png", Data: []byte("png")}); err != nil {
		t.Fatalf("AddGalleryImage: %v", err)
	}

	teachers := NewTeacherService(f.store, testHasher, brokenObjects{}, UploadRules{})
	if err := teachers.Delete(f.ctx, tc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err := f.teachers.Get(f.ctx, tc.ID)
	assertKind(t, err, KindNotFound)
}
