package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFolder(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"leading and trailing slash", "/folder/", "folder"},
		{"trailing slash", "folder/", "folder"},
		{"leading slash", "/folder", "folder"},
		{"backslash separator", `folder\sub`, "folder/sub"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"slashes only", "///", ""},
		{"backslashes only", `\\`, ""},
		{"double slashes collapsed", "a//b///c", "a/b/c"},
		{"surrounding whitespace", "  products/2024  ", "products/2024"},
		{"mixed separators", `\lead\sub/`, "lead/sub"},
		{"nested unchanged", "documents/contracts", "documents/contracts"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeFolder(tc.raw))
		})
	}
}
