package imaging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
)

func TestLoadDirectory_SortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "b.png", solid(4, 4))
	writeJPEG(t, dir, "a.jpg", solid(4, 4))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.jpg"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755))

	photos, err := LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "a.jpg", photos[0].Name)
	assert.Equal(t, 0, photos[0].Index)
	assert.Equal(t, "b.png", photos[1].Name)
	assert.Equal(t, 1, photos[1].Index)
	assert.Equal(t, 1, photos[1].Orientation)

	raw, err := os.ReadFile(filepath.Join(dir, "b.png"))
	require.NoError(t, err)
	assert.Equal(t, inspection.HashContent(raw), photos[1].ContentHash)
	assert.Equal(t, int64(len(raw)), photos[1].Size)
}

func TestLoadDirectory_Empty(t *testing.T) {
	_, err := LoadDirectory(t.TempDir())
	assert.ErrorIs(t, err, ErrNoPhotos)
}

func writeZip(t *testing.T, entries map[string][]byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "batch.zip")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return p
}

func TestLoadArchive(t *testing.T) {
	src := t.TempDir()
	img, err := os.ReadFile(writePNG(t, src, "x.png", solid(3, 3)))
	require.NoError(t, err)

	zp := writeZip(t, map[string][]byte{
		"kitchen/02.png":    img,
		"01.png":            img,
		"readme.md":         []byte("hi"),
		"__MACOSX/._01.png": []byte("junk"),
	})
	out := t.TempDir()
	photos, err := Load(zp, out)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "01.png", photos[0].Name)
	assert.Equal(t, "02.png", photos[1].Name)
	assert.Equal(t, filepath.Join(out, "02.png"), photos[1].Path)
	assert.FileExists(t, photos[1].Path)
}

func TestLoadArchive_RejectsTraversal(t *testing.T) {
	zp := writeZip(t, map[string][]byte{"../evil.jpg": []byte("x")})
	root := t.TempDir()
	_, err := LoadArchive(zp, filepath.Join(root, "out"))
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(root, "evil.jpg"))
}

func TestCheckEntryPath(t *testing.T) {
	assert.ErrorIs(t, checkEntryPath("a/../../b.jpg"), ErrUnsafeArchivePath)
	assert.ErrorIs(t, checkEntryPath("/etc/b.jpg"), ErrUnsafeArchivePath)
	assert.NoError(t, checkEntryPath("rooms/b..jpg"))
}

func TestLoadArchive_RejectsDuplicateNames(t *testing.T) {
	zp := writeZip(t, map[string][]byte{"a/p.jpg": []byte("x"), "b/p.jpg": []byte("y")})
	_, err := LoadArchive(zp, t.TempDir())
	assert.ErrorIs(t, err, ErrDuplicatePhoto)
}

func TestIsPhotoName(t *testing.T) {
	assert.True(t, IsPhotoName("IMG_0001.JPG"))
	assert.True(t, IsPhotoName("dir/shot.heic"))
	assert.False(t, IsPhotoName("report.pdf"))
	assert.False(t, IsPhotoName("._shot.jpg"))
}
