package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/taskhive/task-api/internal/core/domain"
)

const (
	// maxAvatarBytes is the upload ceiling, checked before any decoding.
	maxAvatarBytes = 1000000
	// avatarDimension is the side of the square every avatar is resized to.
	avatarDimension = 250
)

var allowedAvatarExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// SetAvatar validates the upload, transcodes it to a 250x250 PNG and stores
// only the transcoded bytes. Rejections happen before any processing, so a
// previously stored avatar survives a failed upload untouched.
func (s *UserService) SetAvatar(ctx context.Context, user *domain.User, filename string, size int64, r io.Reader) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedAvatarExtensions[ext]; !ok {
		return fmt.Errorf("%w: avatar must be a jpg, jpeg or png image", domain.ErrValidation)
	}
	if size > maxAvatarBytes {
		return fmt.Errorf("%w: avatar must not exceed %d bytes", domain.ErrValidation, maxAvatarBytes)
	}

	img, err := imaging.Decode(io.LimitReader(r, maxAvatarBytes), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("%w: avatar is not a valid image", domain.ErrValidation)
	}

	resized := imaging.Fill(img, avatarDimension, avatarDimension, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return fmt.Errorf("encode avatar: %w", err)
	}

	user.Avatar = buf.Bytes()
	user.UpdatedAt = time.Now().UTC()
	_, err = s.users.Update(ctx, user)
	return err
}

// DeleteAvatar removes the stored avatar, if any.
func (s *UserService) DeleteAvatar(ctx context.Context, user *domain.User) error {
	user.Avatar = nil
	user.UpdatedAt = time.Now().UTC()
	_, err := s.users.Update(ctx, user)
	return err
}

// Avatar returns the stored PNG for a user id. A missing user and a user
// without an avatar are both reported as not found.
func (s *UserService) Avatar(ctx context.Context, userID string) ([]byte, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Avatar) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return user.Avatar, nil
}
