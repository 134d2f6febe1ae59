package utils

import (
	"crypto/rand"
	"encoding/base64"
	"path"
	"strings"

	"github.com/google/uuid"
)

// GenerateSecureToken creates a cryptographically secure random token.
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ObjectKey names an uploaded file "<prefix>/<uuid>_<base name>". Client
// paths, with either separator, are reduced to their last element. It
// returns "" when filename has no usable name.
func ObjectKey(prefix, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.TrimRight(prefix, "/") + "/" + uuid.NewString() + "_" + name
}
