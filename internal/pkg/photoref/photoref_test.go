package photoref

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		ref   string
		valid bool
	}{
		{"reports/2026/10/bin.jpg", true},
		{"https://cdn.example.org/p/abc.WEBP", true},
		{"https://cdn.example.org/p/abc.png?size=large", true},
		{"bin.heic", true},
		{"", false},
		{"notes.txt", false},
		{"drawing.svg", false},
		{"ftp://example.org/a.jpg", false},
		{"with space.jpg", false},
		{strings.Repeat("a", MaxLength) + ".jpg", false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			err := Validate(tt.ref)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateAll(t *testing.T) {
	assert.NoError(t, ValidateAll(nil))
	assert.NoError(t, ValidateAll([]string{"a.jpg", "b.png"}))
	assert.Error(t, ValidateAll([]string{"a.jpg", "b.exe"}))
}
