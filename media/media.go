package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

const MaxPhotoSize = 2 << 20

// Upload directories, relative to the media root.
const (
	RestaurantPhotos = "restaurant-profile-images"
	ItemPhotos       = "item_images"
)

var (
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrPhotoTooLarge       = errors.New("photo too large")
)

var allowedExtensions = []string{"jpg", "jpeg", "png"}

// PhotoError explains why an upload was refused in words fit for the client.
type PhotoError struct {
	Err     error
	Message string
}

func (e *PhotoError) Error() string { return e.Message }
func (e *PhotoError) Unwrap() error { return e.Err }

func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// ValidatePhoto accepts jpg, jpeg and png files of at most MaxPhotoSize bytes.
func ValidatePhoto(fh *multipart.FileHeader) error {
	ext := extension(fh.Filename)
	allowed := false
	for _, a := range allowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return &PhotoError{
			Err: ErrExtensionNotAllowed,
			Message: fmt.Sprintf("File extension “%s” is not allowed. Allowed extensions are: %s.",
				ext, strings.Join(allowedExtensions, ", ")),
		}
	}

	if fh.Size > MaxPhotoSize {
		return &PhotoError{
			Err:     ErrPhotoTooLarge,
			Message: fmt.Sprintf("Photo size must not exceed %s.", humanize.IBytes(MaxPhotoSize)),
		}
	}
	return nil
}

// Store writes uploads below root and hands out URLs below urlPrefix.
type Store struct {
	root      string
	urlPrefix string
}

func NewStore(root, urlPrefix string) *Store {
	return &Store{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *Store) Root() string { return s.root }

func (s *Store) URLPrefix() string { return s.urlPrefix }

// SavePhoto validates fh and stores it in dir under a fresh uuid name, keeping the extension.
// It returns the public URL of the stored file.
func (s *Store) SavePhoto(fh *multipart.FileHeader, dir string) (string, error) {
	if err := ValidatePhoto(fh); err != nil {
		return "", err
	}

	name := uuid.NewString() + "." + extension(fh.Filename)
	saveDir := filepath.Join(s.root, dir)
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := writeFile(filepath.Join(saveDir, name), src); err != nil {
		return "", err
	}

	return path.Join(s.urlPrefix, dir, name), nil
}

// writeFile copies src into a new file at target. A partly written file is removed.
func writeFile(target string, src io.Reader) error {
	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create photo file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(target)
		return fmt.Errorf("write photo file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(target)
		return fmt.Errorf("write photo file: %w", err)
	}
	return nil
}

// Remove deletes a file previously returned by SavePhoto. Unknown URLs are ignored.
func (s *Store) Remove(url string) error {
	if url == "" || !strings.HasPrefix(url, s.urlPrefix+"/") {
		return nil
	}
	rel := strings.TrimPrefix(url, s.urlPrefix+"/")
	if strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
