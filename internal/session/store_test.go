package session

import (
	"errors"
	"testing"
	"time"

	"github.com/claude/titanfit/internal/models"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestLoadEmpty verifies a fresh store reports nobody logged in.
func TestLoadEmpty(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Load(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() err = %v, want ErrNotFound", err)
	}
}

// TestSaveLoadRoundTrip verifies a member session survives a save/load cycle and gets a
// device id and save time.
func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTemp(t)
	fixed := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	err := s.Save(models.AuthSession{
		Role: models.RoleMember,
		User: &models.User{UserID: "u1", Username: "ana", HeightCm: models.Some(170)},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.UserID() != "u1" || got.Role != models.RoleMember {
		t.Errorf("session = %+v", got)
	}
	if got.User.HeightCm.Value != 170 {
		t.Errorf("height = %+v", got.User.HeightCm)
	}
	if got.DeviceID == "" {
		t.Error("expected a device id")
	}
	if !got.SavedAt.Equal(fixed) {
		t.Errorf("SavedAt = %v, want %v", got.SavedAt, fixed)
	}
}

// TestSaveKeepsDeviceID verifies re-login on the same install keeps the device id.
func TestSaveKeepsDeviceID(t *testing.T) {
	s := openTemp(t)
	if err := s.Save(models.AuthSession{Role: models.RoleMember, User: &models.User{UserID: "u1"}}); err != nil {
		t.Fatal(err)
	}
	first, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}

	owner := &models.GymOwner{OwnerID: "o1", Gyms: []models.Gym{{GymID: "g1", Name: "Downtown"}}}
	if err := s.Save(models.AuthSession{Role: models.RoleGymOwner, Owner: owner}); err != nil {
		t.Fatal(err)
	}
	second, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if second.DeviceID != first.DeviceID {
		t.Errorf("device id changed: %q -> %q", first.DeviceID, second.DeviceID)
	}
	if second.Role != models.RoleGymOwner || second.Owner.OwnerID != "o1" || second.UserID() != "" {
		t.Errorf("second session = %+v", second)
	}
}

// TestClear verifies logout removes the session and is idempotent.
func TestClear(t *testing.T) {
	s := openTemp(t)
	if err := s.Save(models.AuthSession{Role: models.RoleMember, User: &models.User{UserID: "u1"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Clear err = %v", err)
	}
}

// TestSchemaMismatch verifies a session written by another schema version is ignored.
func TestSchemaMismatch(t *testing.T) {
	s := openTemp(t)
	if err := s.Save(models.AuthSession{Role: models.RoleMember, User: &models.User{UserID: "u1"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec(`UPDATE auth_session SET schema_version = 0`); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load()
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("ErrSchemaMismatch should also match ErrNotFound")
	}
}

// TestReopen verifies the session persists across process restarts.
func TestReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(models.AuthSession{Role: models.RoleMember, User: &models.User{UserID: "u9"}}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.UserID() != "u9" {
		t.Errorf("UserID = %q, want u9", got.UserID())
	}
}

// TestCurrentUserID verifies only member sessions yield a user id.
func TestCurrentUserID(t *testing.T) {
	s := openTemp(t)
	if _, err := s.CurrentUserID(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty store err = %v", err)
	}

	if err := s.Save(models.AuthSession{Role: models.RoleGymOwner, Owner: &models.GymOwner{OwnerID: "o1"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CurrentUserID(); !errors.Is(err, ErrNotFound) {
		t.Errorf("owner session err = %v, want ErrNotFound", err)
	}

	if err := s.Save(models.AuthSession{Role: models.RoleMember, User: &models.User{UserID: "u1"}}); err != nil {
		t.Fatal(err)
	}
	id, err := s.CurrentUserID()
	if err != nil || id != "u1" {
		t.Errorf("CurrentUserID() = %q, %v", id, err)
	}
}
