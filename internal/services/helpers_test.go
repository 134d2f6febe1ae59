package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rohits-web03/notevault/internal/repositories"
	"github.com/rohits-web03/notevault/internal/testutil"
	"github.com/rohits-web03/notevault/internal/validation"
)

type fixture struct {
	store    *repositories.Store
	sessions *repositories.MemorySessionStore
	auth     *AuthService
	notes    *NoteService
	objects  *fakeObjectStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := testutil.NewStore(t)
	sessions := repositories.NewMemorySessionStore()
	v := validation.New()
	objects := &fakeObjectStore{}

	auth := NewAuthService(store, sessions, v, "test-secret", time.Hour, zap.NewNop())
	auth.bcryptCost = bcrypt.MinCost

	return &fixture{
		store:    store,
		sessions: sessions,
		auth:     auth,
		notes:    NewNoteService(store, objects, v, 5, zap.NewNop()),
		objects:  objects,
	}
}

func (f *fixture) register(t *testing.T, username, email, password string) *Principal {
	t.Helper()

	_, err := f.auth.Register(t.Context(), RegisterInput{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	sess, err := f.auth.Login(t.Context(), LoginInput{Email: email, Password: password})
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	p, err := f.auth.Authenticate(t.Context(), sess.Token)
	if err != nil {
		t.Fatalf("authenticate %s: %v", username, err)
	}
	return p
}

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (s *fakeObjectStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[key] = buf.Bytes()
	return "https://files.example/" + key, nil
}
