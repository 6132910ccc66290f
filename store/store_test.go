package store

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/vjinviraj/pwalib-backend/internal/profile"
)

type fakeDriver struct {
	objects map[string][]byte
	putErr  error
	delErr  error
	pingErr error
	deleted []string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{objects: map[string][]byte{}}
}

func (f *fakeDriver) PutObject(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeDriver) DeleteObject(_ context.Context, key string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeDriver) Ping(context.Context) error {
	return f.pingErr
}

func newTestStore(driver Driver) *Store {
	return New(driver, &profile.Profile{
		StorageBucket:    "pwalib-media",
		StorageBaseURL:   "https://media.example.com",
		StorageKeyPrefix: "pwalib",
	})
}

func TestStoreUpload(t *testing.T) {
	driver := newFakeDriver()
	s := newTestStore(driver)

	content := []byte("%PDF-1.7 fake")
	obj, err := s.Upload(context.Background(), "books", "dune.pdf", bytes.NewReader(content), int64(len(content)), "application/pdf")
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), obj.Size)
	require.Equal(t, "https://media.example.com/"+obj.Key, obj.URL)
	require.Equal(t, content, driver.objects[obj.Key])
}

func TestStoreUploadDriverError(t *testing.T) {
	driver := newFakeDriver()
	driver.putErr = errors.New("bucket gone")
	s := newTestStore(driver)

	_, err := s.Upload(context.Background(), "books", "dune.pdf", bytes.NewReader(nil), 0, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "bucket gone")
}

func TestStoreUploadInvalidFolder(t *testing.T) {
	driver := newFakeDriver()
	s := newTestStore(driver)

	_, err := s.Upload(context.Background(), "nope", "dune.pdf", bytes.NewReader(nil), 0, "")
	require.Error(t, err)
	require.Empty(t, driver.objects)
}

func TestStoreDelete(t *testing.T) {
	driver := newFakeDriver()
	s := newTestStore(driver)

	content := []byte("cover")
	obj, err := s.Upload(context.Background(), "covers", "dune.png", bytes.NewReader(content), int64(len(content)), "image/png")
	require.NoError(t, err)

	key, err := s.Delete(context.Background(), obj.URL)
	require.NoError(t, err)
	require.Equal(t, obj.Key, key)
	require.Equal(t, []string{obj.Key}, driver.deleted)
}

func TestStoreDeleteRejectsForeignLocation(t *testing.T) {
	driver := newFakeDriver()
	s := newTestStore(driver)

	_, err := s.Delete(context.Background(), "https://evil.example.com/pwalib/covers/x.png")
	require.Error(t, err)
	require.Empty(t, driver.deleted)
}

func TestStorePing(t *testing.T) {
	driver := newFakeDriver()
	s := newTestStore(driver)
	require.NoError(t, s.Ping(context.Background()))

	driver.pingErr = errors.New("connection refused")
	require.Error(t, s.Ping(context.Background()))
}
