package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vjinviraj/pwalib-backend/internal/profile"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(nil, &profile.Profile{
		StorageBucket:    "pwalib-media",
		StorageBaseURL:   "https://pwalib-media.s3.us-east-1.amazonaws.com",
		StorageKeyPrefix: "pwalib",
	})
}

func TestBuildKey(t *testing.T) {
	s := testStore(t)

	key, err := s.BuildKey("covers", "My Book Cover.png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key, "pwalib/covers/"), key)
	require.True(t, strings.HasSuffix(key, "-My_Book_Cover.png"), key)

	// Two uploads of the same filename never collide.
	other, err := s.BuildKey("covers", "My Book Cover.png")
	require.NoError(t, err)
	require.NotEqual(t, key, other)
}

func TestBuildKeyDefaultsFolder(t *testing.T) {
	s := testStore(t)

	key, err := s.BuildKey("", "book.pdf")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key, "pwalib/books/"), key)
}

func TestBuildKeyRejectsUnknownFolder(t *testing.T) {
	s := testStore(t)

	_, err := s.BuildKey("secrets", "book.pdf")
	require.Error(t, err)
}

func TestBuildKeyStripsDirectories(t *testing.T) {
	s := testStore(t)

	key, err := s.BuildKey("covers", "../../etc/passwd")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(key, "-passwd"), key)
	require.NotContains(t, key, "..")
}

func TestBuildKeyRejectsEmptyFilename(t *testing.T) {
	s := testStore(t)

	for _, name := range []string{"", ".", "..", "...", "///"} {
		_, err := s.BuildKey("covers", name)
		require.Error(t, err, "filename %q", name)
	}
}

func TestSanitizeFilenameLongNames(t *testing.T) {
	// Long base name: extension survives, total stays within the cap.
	got := sanitizeFilename(strings.Repeat("a", 200) + ".pdf")
	require.Len(t, got, 128)
	require.True(t, strings.HasSuffix(got, ".pdf"), got)

	// Extension alone longer than the cap must not panic.
	got = sanitizeFilename("a." + strings.Repeat("b", 150))
	require.Len(t, got, 128)

	got = sanitizeFilename("." + strings.Repeat("b", 200))
	require.Len(t, got, 128)
}

func TestKeyFromURL(t *testing.T) {
	s := testStore(t)

	key, err := s.KeyFromURL("https://pwalib-media.s3.us-east-1.amazonaws.com/pwalib/covers/abc-dune.png")
	require.NoError(t, err)
	require.Equal(t, "pwalib/covers/abc-dune.png", key)
}

func TestKeyFromURLRoundTrip(t *testing.T) {
	s := testStore(t)

	key, err := s.BuildKey("notices", "September Notice.pdf")
	require.NoError(t, err)

	parsed, err := s.KeyFromURL(s.ObjectURL(key))
	require.NoError(t, err)
	require.Equal(t, key, parsed)
}

func TestKeyFromURLRejections(t *testing.T) {
	s := testStore(t)

	tests := []struct {
		name     string
		location string
	}{
		{"foreign host", "https://evil.example.com/pwalib/covers/x.png"},
		{"wrong scheme", "http://pwalib-media.s3.us-east-1.amazonaws.com/pwalib/covers/x.png"},
		{"empty key", "https://pwalib-media.s3.us-east-1.amazonaws.com/"},
		{"outside namespace", "https://pwalib-media.s3.us-east-1.amazonaws.com/other/covers/x.png"},
		{"traversal", "https://pwalib-media.s3.us-east-1.amazonaws.com/pwalib/covers/../../x.png"},
		{"not a url", "://nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.KeyFromURL(tt.location)
			require.Error(t, err)
		})
	}
}

func TestKeyFromURLPathedBaseURL(t *testing.T) {
	s := New(nil, &profile.Profile{
		StorageBucket:  "pwalib-media",
		StorageBaseURL: "https://cdn.example.com/media",
	})

	key, err := s.KeyFromURL("https://cdn.example.com/media/covers/x.png")
	require.NoError(t, err)
	require.Equal(t, "covers/x.png", key)

	// A sibling path sharing the base as a string prefix is a foreign location.
	_, err = s.KeyFromURL("https://cdn.example.com/mediaX/covers/x.png")
	require.Error(t, err)

	_, err = s.KeyFromURL("https://cdn.example.com/media")
	require.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"book.pdf", "book.pdf"},
		{"my book (final).pdf", "my_book_final_.pdf"},
		{"../../etc/passwd", "passwd"},
		{"..\\..\\windows\\system32", "system32"},
		{"διαβάζω.pdf", "pdf"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}
