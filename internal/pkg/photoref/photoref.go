package photoref

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// MaxLength bounds a stored photo reference.
const MaxLength = 512

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".avif": true,
	".heic": true,
	// SVG stays excluded, it can carry script.
}

// Validate checks that ref points at an image: either an http(s) URL or a
// storage key, ending in a known image extension. Photos themselves are
// never fetched.
func Validate(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("photo reference is empty")
	}
	if len(ref) > MaxLength {
		return fmt.Errorf("photo reference exceeds %d characters", MaxLength)
	}
	if strings.ContainsAny(ref, " \t\r\n") {
		return fmt.Errorf("photo reference %q contains whitespace", ref)
	}

	p := ref
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return fmt.Errorf("photo reference %q is not a valid URL", ref)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("photo reference scheme %q is not supported", u.Scheme)
		}
		p = u.Path
	}

	ext := strings.ToLower(path.Ext(p))
	if !allowedExt[ext] {
		return fmt.Errorf("photo reference %q must end in .jpg, .jpeg, .png, .gif, .webp, .avif or .heic", ref)
	}
	return nil
}

// ValidateAll validates every reference and returns the first failure.
func ValidateAll(refs []string) error {
	for _, ref := range refs {
		if err := Validate(ref); err != nil {
			return err
		}
	}
	return nil
}
