package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jinzhu/gorm"

	"movie-watchlist/pkg/auth"
	"movie-watchlist/pkg/models"
	"movie-watchlist/pkg/testutil"
)

func newService(t *testing.T, name string) (*auth.Service, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t, name)
	return auth.NewService(db, "test-secret", time.Hour), db
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, db := newService(t, "auth_register_dup")

	if _, err := svc.Register("frank", "pw"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := svc.Register("frank", "other"); !errors.Is(err, auth.ErrConflict) {
		t.Fatalf("second registration: got %v, want ErrConflict", err)
	}

	var count int
	if err := db.Model(&models.User{}).Where("username = ?", "frank").Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d rows for frank, want 1", count)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService(t, "auth_register_validation")

	for _, tc := range []struct{ username, password string }{
		{"", "pw"},
		{"frank", ""},
		{"this-username-is-way-too-long", "pw"},
	} {
		if _, err := svc.Register(tc.username, tc.password); !errors.Is(err, auth.ErrValidation) {
			t.Errorf("Register(%q, %q) = %v, want ErrValidation", tc.username, tc.password, err)
		}
	}
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	svc, db := newService(t, "auth_register_hash")

	if _, err := svc.Register("frank", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	var user models.User
	if err := db.Where("username = ?", "frank").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.PasswordHash == "pw" || user.PasswordHash == "" {
		t.Fatalf("password stored without hashing: %q", user.PasswordHash)
	}
	if user.Group != models.GroupUser {
		t.Fatalf("got group %q, want %q", user.Group, models.GroupUser)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newService(t, "auth_login_unknown")
	if _, err := svc.Login("nobody", "pw"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newService(t, "auth_login_wrongpw")
	if _, err := svc.Login("admin", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginAndCurrentIdentity(t *testing.T) {
	svc, _ := newService(t, "auth_login_identity")

	token, err := svc.Login("admin", "123")
	if err != nil {
		t.Fatalf("login admin: %v", err)
	}

	user, err := svc.CurrentIdentity(token)
	if err != nil {
		t.Fatalf("current identity: %v", err)
	}
	if user.Username != "admin" || user.Group != models.GroupAdmin {
		t.Fatalf("got identity %q/%q, want admin/admin", user.Username, user.Group)
	}

	// Logout is a cookie drop; an absent or mangled token is anonymous.
	if _, err := svc.CurrentIdentity(""); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("empty token: got %v, want ErrUnauthorized", err)
	}
	if _, err := svc.CurrentIdentity("not-a-token"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("garbage token: got %v, want ErrUnauthorized", err)
	}
}

func TestCurrentIdentityRejectsForeignSecret(t *testing.T) {
	db := testutil.OpenDB(t, "auth_foreign_secret")
	issuer := auth.NewService(db, "secret-a", time.Hour)
	verifier := auth.NewService(db, "secret-b", time.Hour)

	token, err := issuer.Login("admin", "123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := verifier.CurrentIdentity(token); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestCurrentIdentityExpiredToken(t *testing.T) {
	db := testutil.OpenDB(t, "auth_expired")
	svc := auth.NewService(db, "test-secret", -time.Minute)

	token, err := svc.Login("admin", "123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.CurrentIdentity(token); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestUpdateName(t *testing.T) {
	svc, db := newService(t, "auth_update_name")

	if err := svc.UpdateName("admin", "Boss"); err != nil {
		t.Fatalf("update name: %v", err)
	}
	var user models.User
	if err := db.Where("username = ?", "admin").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Name != "Boss" {
		t.Fatalf("got name %q, want Boss", user.Name)
	}

	if err := svc.UpdateName("admin", ""); !errors.Is(err, auth.ErrValidation) {
		t.Fatalf("empty name: got %v, want ErrValidation", err)
	}
	if err := svc.UpdateName("nobody", "Boss"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("unknown user: got %v, want ErrNotFound", err)
	}
}
