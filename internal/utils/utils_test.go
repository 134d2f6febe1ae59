package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken(16)
	require.NoError(t, err)
	b, err := GenerateSecureToken(16)
	require.NoError(t, err)

	assert.Len(t, a, 22)
	assert.NotEqual(t, a, b)
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("notes/7/", `C:\Users\alice\slides.pdf`)
	assert.True(t, strings.HasPrefix(key, "notes/7/"), key)
	assert.True(t, strings.HasSuffix(key, "_slides.pdf"), key)
	assert.Len(t, key, len("notes/7/")+36+len("_slides.pdf"))

	assert.NotContains(t, ObjectKey("notes/7", "../../etc/passwd"), "..")
	for _, bad := range []string{"", "/", "..", "dir/.."} {
		assert.Empty(t, ObjectKey("notes/7", bad), bad)
	}
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, http.StatusBadRequest, "validation failed", map[string]string{"title": "This field is required."})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"message":"validation failed","errors":{"title":"This field is required."}}`, rec.Body.String())
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, "done", map[string]int{"n": 1})
	assert.JSONEq(t, `{"success":true,"message":"done","data":{"n":1}}`, rec.Body.String())
}
