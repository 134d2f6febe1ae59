package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	domainerrors "github.com/rohits-web03/notevault/internal/errors"
)

const maxTagLength = 50

// ParseTags turns a comma-separated tag string into normalized names:
// trimmed, lowercased, empty tokens dropped, duplicates collapsed in
// first-seen order.
func ParseTags(raw string) ([]string, error) {
	seen := make(map[string]struct{})
	names := []string{}
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		if utf8.RuneCountInString(name) > maxTagLength {
			return nil, domainerrors.FieldValidation("tags",
				fmt.Sprintf("Tag %q is longer than %d characters.", name, maxTagLength))
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}
