package services

import (
	"strings"
	"testing"
	"time"
)

type stubAuthStore struct {
	users map[string]*User
}

func newStubAuthStore() *stubAuthStore { return &stubAuthStore{users: map[string]*User{}} }

func (s *stubAuthStore) FindUserByEmail(email string) (*User, error) {
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (s *stubAuthStore) AddUser(u *User) error {
	s.users[strings.ToLower(u.Email)] = u
	return nil
}

func testSigner(uid, email string, ttl time.Duration) (string, error) {
	return "token:" + uid, nil
}

func TestAuthRegisterAndLogin(t *testing.T) {
	svc := NewAuthService(newStubAuthStore(), testSigner)

	reg, err := svc.Register("admin@example.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	if reg.UserID == "" || reg.Token != "token:"+reg.UserID {
		t.Fatalf("register result = %+v", reg)
	}

	login, err := svc.Login("admin@example.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	if login.UserID != reg.UserID {
		t.Errorf("login user = %s, want %s", login.UserID, reg.UserID)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	svc := NewAuthService(newStubAuthStore(), testSigner)

	if _, err := svc.Register("", "pw"); err == nil {
		t.Error("empty email must fail")
	}
	if _, err := svc.Register("a@b.com", "  "); err == nil {
		t.Error("blank password must fail")
	}

	if _, err := svc.Register("dup@example.com", "pw123"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Register("dup@example.com", "pw456")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorConflict {
		t.Errorf("duplicate email: got %v", err)
	}
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService(newStubAuthStore(), testSigner)
	if _, err := svc.Register("admin@example.com", "secret123"); err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct{ email, password string }{
		{"admin@example.com", "wrong"},
		{"nobody@example.com", "secret123"},
	} {
		_, err := svc.Login(tc.email, tc.password)
		se, ok := AsServiceError(err)
		if !ok || se.Code != ErrorUnauthorized {
			t.Errorf("login %s/%s: got %v", tc.email, tc.password, err)
		}
	}
}
