// Package store provides object storage access for uploaded library files.
package store

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/vjinviraj/pwalib-backend/internal/profile"
)

// Driver is the object storage backend interface.
type Driver interface {
	// PutObject writes the object under the given key. Size must be the exact
	// byte count of the reader's content.
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// DeleteObject removes the object stored under the given key.
	DeleteObject(ctx context.Context, key string) error

	// Ping verifies the backend is reachable and the bucket exists.
	Ping(ctx context.Context) error
}

// Object describes a stored object as reported back to clients.
type Object struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Store provides namespaced access to the object storage driver.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

// Upload writes the content under a fresh namespaced key in the given folder
// and returns the stored object's location.
func (s *Store) Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (*Object, error) {
	key, err := s.BuildKey(folder, filename)
	if err != nil {
		return nil, err
	}

	if err := s.driver.PutObject(ctx, key, r, size, contentType); err != nil {
		return nil, errors.Wrapf(err, "failed to store object %s", key)
	}

	return &Object{
		Key:  key,
		URL:  s.ObjectURL(key),
		Size: size,
	}, nil
}

// Delete parses the stored object's location into a storage key and removes it.
func (s *Store) Delete(ctx context.Context, location string) (string, error) {
	key, err := s.KeyFromURL(location)
	if err != nil {
		return "", err
	}

	if err := s.driver.DeleteObject(ctx, key); err != nil {
		return "", errors.Wrapf(err, "failed to delete object %s", key)
	}

	return key, nil
}

// Ping verifies storage connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.Ping(ctx)
}
