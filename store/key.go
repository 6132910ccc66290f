package store

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
)

// Folders clients may upload into. Anything else is rejected at validation.
var allowedFolders = map[string]bool{
	"covers":  true,
	"books":   true,
	"notices": true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// BuildKey constructs a fresh object storage key:
// <prefix>/<folder>/<shortuuid>-<sanitized filename>.
func (s *Store) BuildKey(folder, filename string) (string, error) {
	if folder == "" {
		folder = "books"
	}
	if !allowedFolders[folder] {
		return "", validationErrorf("invalid upload folder %q", folder)
	}

	name := sanitizeFilename(filename)
	if name == "" {
		return "", validationErrorf("invalid filename %q", filename)
	}

	key := path.Join(folder, shortuuid.New()+"-"+name)
	if prefix := s.profile.StorageKeyPrefix; prefix != "" {
		key = path.Join(prefix, key)
	}
	return key, nil
}

// ObjectURL returns the public location of the object stored under key.
func (s *Store) ObjectURL(key string) string {
	return s.profile.StorageBaseURL + "/" + key
}

// KeyFromURL parses a stored object's location back into its storage key.
// The location must resolve under the configured public base URL and the
// configured key prefix; anything else is rejected.
func (s *Store) KeyFromURL(location string) (string, error) {
	parsed, err := url.Parse(location)
	if err != nil {
		return "", validationErrorf("invalid object location %q", location)
	}

	base, err := url.Parse(s.profile.StorageBaseURL)
	if err != nil {
		return "", errors.Wrap(err, "invalid storage base URL")
	}

	if parsed.Scheme != base.Scheme || parsed.Host != base.Host {
		return "", validationErrorf("object location %q is not under %s", location, s.profile.StorageBaseURL)
	}

	key := parsed.Path
	if basePath := strings.TrimSuffix(base.Path, "/"); basePath != "" {
		// Require the path-segment boundary so /mediaX does not match /media.
		if !strings.HasPrefix(key, basePath+"/") {
			return "", validationErrorf("object location %q is not under %s", location, s.profile.StorageBaseURL)
		}
		key = strings.TrimPrefix(key, basePath)
	}
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", validationErrorf("object location %q has no key", location)
	}

	// path.Clean collapses any ../ segments; a key that changes under
	// cleaning was trying to escape the namespace.
	if cleaned := path.Clean(key); cleaned != key {
		return "", validationErrorf("object key %q is not canonical", key)
	}

	if prefix := s.profile.StorageKeyPrefix; prefix != "" && !strings.HasPrefix(key, prefix+"/") {
		return "", validationErrorf("object key %q is outside namespace %q", key, prefix)
	}

	return key, nil
}

func sanitizeFilename(filename string) string {
	// Strip any client-supplied directory components first.
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))
	filename = unsafeFilenameChars.ReplaceAllString(filename, "_")
	filename = strings.Trim(filename, "._")
	if len(filename) > 128 {
		// Only [a-zA-Z0-9._-] survives the replacement above, so byte
		// slicing cannot split a rune here.
		ext := path.Ext(filename)
		if len(ext) >= 128 {
			filename = filename[:128]
		} else {
			filename = filename[:128-len(ext)] + ext
		}
	}
	return filename
}
