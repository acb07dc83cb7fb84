package imaging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
)

var (
	ErrUnsafeArchivePath = errors.New("archive entry escapes extract dir")
	ErrDuplicatePhoto    = errors.New("duplicate photo name")
	ErrNoPhotos          = errors.New("no photos found")
)

var photoExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".bmp": true, ".tif": true, ".tiff": true, ".heic": true, ".heif": true,
}

// IsPhotoName reports whether name has a photo file extension.
func IsPhotoName(name string) bool {
	base := path.Base(filepath.ToSlash(name))
	if strings.HasPrefix(base, ".") {
		return false
	}
	return photoExt[strings.ToLower(filepath.Ext(base))]
}

// Load dispatches on src: a .zip archive is extracted into workDir, anything
// else is read as a directory.
func Load(src, workDir string) ([]inspection.Photo, error) {
	if strings.EqualFold(filepath.Ext(src), ".zip") {
		return LoadArchive(src, workDir)
	}
	return LoadDirectory(src)
}

// LoadDirectory lists the photos directly inside dir, ordered by file name.
func LoadDirectory(dir string) ([]inspection.Photo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read photo dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsPhotoName(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return describeAll(paths)
}

// LoadArchive extracts the photos of a zip archive into extractDir (flattened
// to their base names) and returns them ordered by file name.
func LoadArchive(zipPath, extractDir string) ([]inspection.Photo, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return nil, fmt.Errorf("create extract dir: %w", err)
	}

	seen := map[string]bool{}
	var paths []string
	for _, f := range zr.File {
		name := filepath.ToSlash(f.Name)
		if err := checkEntryPath(name); err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() || strings.HasPrefix(name, "__MACOSX/") || !IsPhotoName(name) {
			continue
		}
		base := path.Base(name)
		if seen[base] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePhoto, base)
		}
		seen[base] = true

		dst := filepath.Join(extractDir, base)
		if err := extract(f, dst); err != nil {
			return nil, err
		}
		paths = append(paths, dst)
	}
	return describeAll(paths)
}

func checkEntryPath(name string) error {
	if strings.HasPrefix(name, "/") || filepath.IsAbs(name) {
		return fmt.Errorf("%w: %s", ErrUnsafeArchivePath, name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return fmt.Errorf("%w: %s", ErrUnsafeArchivePath, name)
		}
	}
	return nil
}

func extract(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return out.Close()
}

func describeAll(paths []string) ([]inspection.Photo, error) {
	if len(paths) == 0 {
		return nil, ErrNoPhotos
	}
	sort.Slice(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) < filepath.Base(paths[j])
	})
	photos := make([]inspection.Photo, 0, len(paths))
	for i, p := range paths {
		ph, err := Describe(p)
		if err != nil {
			return nil, err
		}
		ph.Index = i
		photos = append(photos, ph)
	}
	return photos, nil
}

// Describe reads one file and fills the immutable Photo fields. Undecodable
// content is not an error here; it surfaces later from the normalizer.
func Describe(p string) (inspection.Photo, error) {
	raw, err := os.ReadFile(p)
	if err != nil {
		return inspection.Photo{}, fmt.Errorf("read photo: %w", err)
	}
	return inspection.Photo{
		Name:        filepath.Base(p),
		Path:        p,
		Size:        int64(len(raw)),
		ContentHash: inspection.HashContent(raw),
		Orientation: readOrientation(raw),
	}, nil
}
