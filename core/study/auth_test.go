package study

import (
	"testing"
)

func TestService_Login(t *testing.T) {
	setup := func(t *testing.T) (*Service, *Store) {
		svc, store := newTestService(t)
		createStudent(t, store, "Ana Reyes", "s3cret", SectionEinsteinG11)
		createTeacher(t, store, "Ms. Cho", SectionEinsteinG11, "Physics")
		return svc, store
	}

	tests := []struct {
		name     string
		loginAs  string
		password string
		wantName string
		wantErr  bool
	}{
		{name: "exact name", loginAs: "Ana Reyes", password: "s3cret", wantName: "Ana Reyes"},
		{name: "case-insensitive", loginAs: "ana reyes", password: "s3cret", wantName: "Ana Reyes"},
		{name: "surrounding whitespace trimmed", loginAs: "  Ana Reyes  ", password: "s3cret", wantName: "Ana Reyes"},
		{name: "wrong password", loginAs: "Ana Reyes", password: "guess", wantErr: true},
		{name: "unknown name", loginAs: "Nobody", password: "s3cret", wantErr: true},
		{name: "username is not a login name", loginAs: "ana_reyes", password: "s3cret", wantErr: true},
		{name: "empty credentials", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := setup(t)
			usr, err := svc.Login(tt.loginAs, tt.password)
			if tt.wantErr {
				if err != ErrAuthenticationFailed {
					t.Fatalf("Login() error = %v, want ErrAuthenticationFailed", err)
				}
				if _, ok := store.SessionUser(); ok {
					t.Error("Login() set a session on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if usr.Name != tt.wantName {
				t.Errorf("Login() user = %q, want %q", usr.Name, tt.wantName)
			}
			session, ok := store.SessionUser()
			if !ok || session.ID != usr.ID {
				t.Errorf("Login() session = %+v, %v", session, ok)
			}
		})
	}
}

func TestService_Login_firstMatchWins(t *testing.T) {
	svc, store := newTestService(t)
	first := createStudent(t, store, "Ana Reyes", "first-pwd", SectionEinsteinG11)
	createStudent(t, store, "Ana Reyes", "second-pwd", SectionGalileiG12)

	// the first registered duplicate is the only reachable one
	usr, err := svc.Login("ana reyes", "first-pwd")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if usr.ID != first.ID {
		t.Errorf("Login() matched user %s, want first registered %s", usr.ID, first.ID)
	}

	// the second duplicate's password does not rescue the attempt
	if _, err := svc.Login("ana reyes", "second-pwd"); err != ErrAuthenticationFailed {
		t.Errorf("Login() error = %v, want ErrAuthenticationFailed", err)
	}
}

func TestService_Logout(t *testing.T) {
	svc, store := newTestService(t)
	createStudent(t, store, "Ana Reyes", "s3cret", SectionEinsteinG11)

	if _, err := svc.Login("Ana Reyes", "s3cret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	svc.Logout()
	if _, ok := store.SessionUser(); ok {
		t.Error("Logout() left a session behind")
	}

	svc.Logout() // idempotent
}

func TestPlainVerifier(t *testing.T) {
	usr := User{Password: "s3cret"}

	if err := (PlainVerifier{}).Verify(usr, "s3cret"); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
	if err := (PlainVerifier{}).Verify(usr, "S3cret"); err != ErrAuthenticationFailed {
		t.Errorf("Verify() error = %v, want ErrAuthenticationFailed", err)
	}
	if err := (PlainVerifier{}).Verify(usr, ""); err != ErrAuthenticationFailed {
		t.Errorf("Verify() error = %v, want ErrAuthenticationFailed", err)
	}
}
