// filename.go validates and sanitizes client-supplied photo filenames before
// they become storage object names. Sanitization is deliberately aggressive:
// object names end up in URLs, storage keys, and on-disk paths, so anything
// outside a conservative character set is dropped.
package validation

import (
	"fmt"
	"path"
	"strings"
)

// AllowedExtensions lists the photo file extensions accepted for upload,
// lowercase with the leading dot.
var AllowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// SanitizeFilename reduces a client-supplied filename to a safe storage object
// name. Path separators become word breaks, runs of whitespace collapse to a
// single underscore, and any character outside [A-Za-z0-9_.-] is dropped.
// Leading and trailing dots, dashes, and underscores are stripped so the
// result can never be a dotfile or a relative path component.
//
// Returns an error when nothing safe remains (e.g. "../../" or "日本語" with no
// ASCII characters).
func SanitizeFilename(name string) (string, error) {
	// Path separators from any client OS become spaces so the segments are
	// joined with underscores below rather than concatenated.
	name = strings.ReplaceAll(name, "/", " ")
	name = strings.ReplaceAll(name, "\\", " ")

	// Collapse whitespace runs into single underscores.
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_', r == '.', r == '-':
			b.WriteRune(r)
		}
	}

	cleaned := strings.Trim(b.String(), "._-")
	if cleaned == "" {
		return "", fmt.Errorf("filename %q contains no usable characters", name)
	}

	return cleaned, nil
}

// ValidatePhotoFilename sanitizes name and checks its extension against the
// photo allowlist. It returns the sanitized name to store.
func ValidatePhotoFilename(name string) (string, error) {
	cleaned, err := SanitizeFilename(name)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(cleaned))
	if !AllowedExtensions[ext] {
		return "", fmt.Errorf("file extension %q is not an allowed photo type", ext)
	}

	return cleaned, nil
}
