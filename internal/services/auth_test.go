package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domainerrors "github.com/rohits-web03/notevault/internal/errors"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	user, err := f.auth.Register(t.Context(), RegisterInput{
		Username:        " alice ",
		Email:           "Alice@Example.com ",
		Password:        "pw1",
		ConfirmPassword: "pw1",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "pw1", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("pw1")))
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{"short username", RegisterInput{Username: "a", Email: "a@x.com", Password: "p", ConfirmPassword: "p"}, "username"},
		{"long username", RegisterInput{Username: strings.Repeat("a", 21), Email: "a@x.com", Password: "p", ConfirmPassword: "p"}, "username"},
		{"bad email", RegisterInput{Username: "alice", Email: "not-an-email", Password: "p", ConfirmPassword: "p"}, "email"},
		{"missing password", RegisterInput{Username: "alice", Email: "a@x.com", ConfirmPassword: "p"}, "password"},
		{"mismatch", RegisterInput{Username: "alice", Email: "a@x.com", Password: "p", ConfirmPassword: "q"}, "confirm_password"},
		{"password over 72 bytes", RegisterInput{Username: "alice", Email: "a@x.com", Password: strings.Repeat("é", 40), ConfirmPassword: strings.Repeat("é", 40)}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(t.Context(), tt.input)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
			assert.Contains(t, domainErr.FieldErrors(), tt.field)
		})
	}

	taken, err := f.store.Read(t.Context()).Users.EmailTaken("a@x.com", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, taken, "failed registrations must not create users")
}

func TestRegister_Conflicts(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com", "pw1")

	_, err := f.auth.Register(t.Context(), RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "pw", ConfirmPassword: "pw",
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
	assert.Contains(t, err.Error(), "username")

	_, err = f.auth.Register(t.Context(), RegisterInput{
		Username: "alice2", Email: "ALICE@example.com", Password: "pw", ConfirmPassword: "pw",
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
	assert.Contains(t, err.Error(), "email")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com", "pw1")

	sess, err := f.auth.Login(t.Context(), LoginInput{Email: "ALICE@example.com", Password: "pw1"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)

	p, err := f.auth.Authenticate(t.Context(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.NotEmpty(t, p.SessionID)
}

func TestLogin_FailsGenerically(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com", "pw1")

	_, wrongPassword := f.auth.Login(t.Context(), LoginInput{Email: "alice@example.com", Password: "nope"})
	_, unknownEmail := f.auth.Login(t.Context(), LoginInput{Email: "bob@example.com", Password: "pw1"})

	for _, err := range []error{wrongPassword, unknownEmail} {
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))
		assert.Equal(t, "Login failed. Check email and password.", err.Error())
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com", "pw1")
	sess, err := f.auth.Login(t.Context(), LoginInput{Email: "alice@example.com", Password: "pw1"})
	require.NoError(t, err)

	other := NewAuthService(f.store, f.sessions, f.auth.validator, "another-secret", time.Hour, f.auth.log)

	cases := map[string]func() error{
		"empty": func() error {
			_, err := f.auth.Authenticate(t.Context(), "")
			return err
		},
		"garbage": func() error {
			_, err := f.auth.Authenticate(t.Context(), "not.a.jwt")
			return err
		},
		"wrong secret": func() error {
			_, err := other.Authenticate(t.Context(), sess.Token)
			return err
		},
		"tampered": func() error {
			_, err := f.auth.Authenticate(t.Context(), sess.Token+"x")
			return err
		},
	}
	for name, authenticate := range cases {
		t.Run(name, func(t *testing.T) {
			assert.True(t, domainerrors.Is(authenticate(), domainerrors.ErrUnauthorized))
		})
	}
}

func TestAuthenticate_Expired(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com", "pw1")
	sess, err := f.auth.Login(t.Context(), LoginInput{Email: "alice@example.com", Password: "pw1"})
	require.NoError(t, err)

	f.auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = f.auth.Authenticate(t.Context(), sess.Token)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com", "pw1")
	sess, err := f.auth.Login(t.Context(), LoginInput{Email: "alice@example.com", Password: "pw1"})
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(t.Context(), sess.Token))
	_, err = f.auth.Authenticate(t.Context(), sess.Token)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))

	// Logging out twice, or without a usable token, is not an error.
	assert.NoError(t, f.auth.Logout(t.Context(), sess.Token))
	assert.NoError(t, f.auth.Logout(t.Context(), ""))
	assert.NoError(t, f.auth.Logout(t.Context(), "garbage"))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	p := f.register(t, "alice", "alice@example.com", "pw1")

	err := f.auth.ChangePassword(t.Context(), p.UserID, ChangePasswordInput{
		CurrentPassword: "wrong", NewPassword: "pw2", ConfirmPassword: "pw2",
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))

	err = f.auth.ChangePassword(t.Context(), p.UserID, ChangePasswordInput{
		CurrentPassword: "pw1", NewPassword: "pw2", ConfirmPassword: "pw3",
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	long := strings.Repeat("é", 40)
	err = f.auth.ChangePassword(t.Context(), p.UserID, ChangePasswordInput{
		CurrentPassword: "pw1", NewPassword: long, ConfirmPassword: long,
	})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
	assert.Contains(t, domainErr.FieldErrors(), "new_password")

	require.NoError(t, f.auth.ChangePassword(t.Context(), p.UserID, ChangePasswordInput{
		CurrentPassword: "pw1", NewPassword: "pw2", ConfirmPassword: "pw2",
	}))

	_, err = f.auth.Login(t.Context(), LoginInput{Email: "alice@example.com", Password: "pw1"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))
	_, err = f.auth.Login(t.Context(), LoginInput{Email: "alice@example.com", Password: "pw2"})
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@example.com", "pw1")
	f.register(t, "bob", "bob@example.com", "pw1")

	// Keeping your own username and email is not a conflict.
	user, err := f.auth.UpdateProfile(t.Context(), alice.UserID, ProfileInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = f.auth.UpdateProfile(t.Context(), alice.UserID, ProfileInput{Username: "bob", Email: "alice@example.com"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))

	_, err = f.auth.UpdateProfile(t.Context(), alice.UserID, ProfileInput{Username: "alice", Email: "BOB@example.com"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))

	user, err = f.auth.UpdateProfile(t.Context(), alice.UserID, ProfileInput{Username: "alicia", Email: "alicia@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alicia", user.Username)

	stored, err := f.auth.User(t.Context(), alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alicia@example.com", stored.Email)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@example.com", "pw1")
	sess, err := f.auth.Login(t.Context(), LoginInput{Email: "alice@example.com", Password: "pw1"})
	require.NoError(t, err)

	note, err := f.notes.Create(t.Context(), alice.UserID, NoteInput{
		Title: "T", Subject: "S", Content: "C", Tags: "keep",
	})
	require.NoError(t, err)

	require.NoError(t, f.auth.DeleteAccount(t.Context(), alice.UserID))

	_, err = f.auth.Authenticate(t.Context(), sess.Token)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
	_, err = f.notes.Get(t.Context(), alice.UserID, note.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	_, err = f.store.Read(t.Context()).Tags.ByName("keep")
	assert.NoError(t, err, "tags outlive the account")

	assert.True(t, domainerrors.Is(f.auth.DeleteAccount(t.Context(), alice.UserID), domainerrors.ErrNotFound))

	// The email can be registered again.
	f.register(t, "alice", "alice@example.com", "pw2")
}

func TestSignInWithEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ada", "someone@example.com", "pw1")

	sess, err := f.auth.SignInWithEmail(t.Context(), "ada@example.com", "Ada")
	require.NoError(t, err)
	p, err := f.auth.Authenticate(t.Context(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "Ada2", p.Username)
	assert.Equal(t, "ada@example.com", p.Email)

	// A second sign-in reuses the account.
	sess, err = f.auth.SignInWithEmail(t.Context(), "ADA@example.com", "Someone Else")
	require.NoError(t, err)
	again, err := f.auth.Authenticate(t.Context(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, p.UserID, again.UserID)
}

func TestUsernameBase(t *testing.T) {
	tests := []struct {
		display, email, want string
	}{
		{"Ada Lovelace", "ada@example.com", "AdaLovelace"},
		{"", "grace.hopper@example.com", "grace.hopper"},
		{"!", "x@example.com", "user"},
		{strings.Repeat("n", 30), "n@example.com", strings.Repeat("n", 20)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, usernameBase(tt.display, tt.email), tt.display)
	}
}
