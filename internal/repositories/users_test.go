package repositories_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rohits-web03/notevault/internal/models"
	"github.com/rohits-web03/notevault/internal/repositories"
	"github.com/rohits-web03/notevault/internal/testutil"
)

func TestUsersCreate_DuplicateEmail(t *testing.T) {
	store := testutil.NewStore(t)
	testutil.CreateUser(t, store, "alice", "alice@example.com")

	err := store.Read(t.Context()).Users.Create(&models.User{Username: "alice2", Email: "alice@example.com", Password: "x"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestUsersTaken_ExcludesSelf(t *testing.T) {
	store := testutil.NewStore(t)
	alice := testutil.CreateUser(t, store, "alice", "alice@example.com")
	users := store.Read(t.Context()).Users

	taken, err := users.UsernameTaken("alice", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = users.UsernameTaken("alice", alice.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = users.EmailTaken("nobody@example.com", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUsersLookup(t *testing.T) {
	store := testutil.NewStore(t)
	alice := testutil.CreateUser(t, store, "alice", "alice@example.com")
	users := store.Read(t.Context()).Users

	byEmail, err := users.ByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	_, err = users.ByID(uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUsersDelete_RemovesNotesKeepsTags(t *testing.T) {
	store := testutil.NewStore(t)
	alice := testutil.CreateUser(t, store, "alice", "alice@example.com")
	bob := testutil.CreateUser(t, store, "bob", "bob@example.com")
	createNote(t, store, alice.ID, "mine", "S", "C", "only-alice", "shared")
	bobNote := createNote(t, store, bob.ID, "bobs", "S", "C", "shared")

	err := store.Transaction(t.Context(), func(r repositories.Repos) error {
		return r.Users.Delete(alice.ID)
	})
	require.NoError(t, err)

	count, err := store.Read(t.Context()).Notes.CountByOwner(alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = store.Read(t.Context()).Users.ByID(alice.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = store.Read(t.Context()).Tags.ByName("only-alice")
	assert.NoError(t, err, "tags are never cascaded")

	got, err := store.Read(t.Context()).Notes.ByID(bobNote.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, got.TagNames())
}

func TestUsersUpdate(t *testing.T) {
	store := testutil.NewStore(t)
	alice := testutil.CreateUser(t, store, "alice", "alice@example.com")
	users := store.Read(t.Context()).Users

	alice.Username = "alicia"
	require.NoError(t, users.UpdateProfile(alice))
	require.NoError(t, users.UpdatePassword(alice.ID, "new-hash"))

	got, err := users.ByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", got.Username)
	assert.Equal(t, "new-hash", got.Password)
}

func TestStorePing(t *testing.T) {
	store := testutil.NewStore(t)
	assert.NoError(t, store.Ping(t.Context()))
}
