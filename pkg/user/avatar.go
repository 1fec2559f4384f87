package user

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxAvatarBytes is the upload size limit for avatar images.
const MaxAvatarBytes = 2 << 20

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

var ErrInvalidAvatar = errors.New("avatar must be a jpeg, png or gif image no larger than 2MB")

// AvatarStore persists an uploaded avatar and returns its stored path,
// relative to the asset base.
type AvatarStore interface {
	Store(contentType string, r io.Reader) (string, error)
}

// LocalAvatarStore writes avatars to local disk under Dir/avatars with
// uuid filenames.
type LocalAvatarStore struct {
	Dir string
}

func NewLocalAvatarStore(dir string) *LocalAvatarStore {
	return &LocalAvatarStore{Dir: dir}
}

func (s *LocalAvatarStore) Store(contentType string, r io.Reader) (string, error) {
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return "", ErrInvalidAvatar
	}

	if err := os.MkdirAll(filepath.Join(s.Dir, "avatars"), 0o755); err != nil {
		return "", fmt.Errorf("failed to create avatar dir: %w", err)
	}

	rel := path.Join("avatars", uuid.New().String()+ext)
	f, err := os.Create(filepath.Join(s.Dir, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("failed to create avatar file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, MaxAvatarBytes)); err != nil {
		return "", fmt.Errorf("failed to write avatar file: %w", err)
	}
	return rel, nil
}

// AvatarURL renders a stored avatar path as an absolute URL using the
// configured asset base. Users without an avatar render as null.
func AvatarURL(assetBase string, avatar sql.NullString) *string {
	if !avatar.Valid || avatar.String == "" {
		return nil
	}
	u := strings.TrimRight(assetBase, "/") + "/" + strings.TrimLeft(avatar.String, "/")
	return &u
}
