package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"inkwell/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateName(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	name := GenerateName("Holiday Photo.JPG", now)
	assert.True(t, strings.HasPrefix(name, "1700000000123-"))
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.True(t, ValidName(name), name)

	noExt := GenerateName("README", now)
	assert.True(t, ValidName(noExt), noExt)
	assert.Equal(t, -1, strings.Index(noExt, "."))

	weird := GenerateName("evil.p/h<p>", now)
	assert.True(t, ValidName(weird), weird)

	assert.NotEqual(t, GenerateName("a.png", now), GenerateName("a.png", now))
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"1700000000123-deadbeef.png", true},
		{"1700000000123-deadbeef", true},
		{"../etc/passwd", false},
		{"1700000000123-deadbeef/../x.png", false},
		{"sub/1700000000123-deadbeef.png", false},
		{"..", false},
		{"", false},
		{"notgenerated.png", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidName(tt.name))
		})
	}
}

func TestNameFromURL(t *testing.T) {
	name, ok := NameFromURL("/uploads/1700000000123-deadbeef.png")
	assert.True(t, ok)
	assert.Equal(t, "1700000000123-deadbeef.png", name)

	_, ok = NameFromURL("/elsewhere/1700000000123-deadbeef.png")
	assert.False(t, ok)
	_, ok = NameFromURL("/uploads/../secret")
	assert.False(t, ok)
}

func TestDiskStore_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewDiskStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Save(ctx, Upload{Filename: "cat.png", ContentType: "image/png", Data: []byte("not really a png")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, URLPrefix))

	name, ok := NameFromURL(url)
	require.True(t, ok)

	info, err := os.Stat(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, int64(len("not really a png")), info.Size())

	obj, err := store.Open(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, []byte("not really a png"), obj.Data)
	assert.Equal(t, "image/png", obj.ContentType)

	require.NoError(t, store.Remove(ctx, name))
	_, err = store.Open(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Remove(ctx, name), ErrNotFound)
}

func TestDiskStore_RejectsTraversal(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("x"), 0o600))
	store, err := NewDiskStore(filepath.Join(root, "uploads"))
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "../secret.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Remove(context.Background(), "../secret.txt"), ErrNotFound)

	_, statErr := os.Stat(filepath.Join(root, "secret.txt"))
	assert.NoError(t, statErr)
}

func TestDiskStore_SaveFailsWhenDirectoryMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewDiskStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	_, err = store.Save(context.Background(), Upload{Filename: "a.png", Data: []byte("x")})
	assert.Error(t, err)
}

func TestNew_SelectsBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "media")
	store, err := New(context.Background(), &config.Config{MediaBackend: "disk", UploadDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &DiskStore{}, store)

	_, err = New(context.Background(), &config.Config{MediaBackend: "ftp"})
	assert.Error(t, err)
}
