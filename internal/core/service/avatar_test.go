package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/taskhive/task-api/internal/core/domain"
)

// tinyPNG renders a small solid image and encodes it as PNG.
func tinyPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestUserService_SetAvatar_StoresSquarePNG(t *testing.T) {
	users := newStubUserRepo()
	svc, _, _ := newTestUserService(users, newStubTaskRepo())
	registered := registerAlice(t, svc)
	ctx := context.Background()

	upload := tinyPNG(t, 60, 40)
	if err := svc.SetAvatar(ctx, registered.User, "me.png", int64(len(upload)), bytes.NewReader(upload)); err != nil {
		t.Fatalf("SetAvatar failed: %v", err)
	}

	stored, err := users.FindByID(ctx, registered.User.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(stored.Avatar))
	if err != nil {
		t.Fatalf("stored avatar is not a PNG: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 250 || bounds.Dy() != 250 {
		t.Fatalf("expected 250x250 avatar, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestUserService_SetAvatar_RejectsBadUploads(t *testing.T) {
	users := newStubUserRepo()
	svc, _, _ := newTestUserService(users, newStubTaskRepo())
	registered := registerAlice(t, svc)
	ctx := context.Background()

	original := tinyPNG(t, 30, 30)
	if err := svc.SetAvatar(ctx, registered.User, "first.png", int64(len(original)), bytes.NewReader(original)); err != nil {
		t.Fatalf("seed avatar: %v", err)
	}
	before, err := users.FindByID(ctx, registered.User.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}

	upload := tinyPNG(t, 30, 30)
	cases := []struct {
		name     string
		filename string
		size     int64
		body     []byte
	}{
		{"disallowed extension", "anim.gif", int64(len(upload)), upload},
		{"oversize", "big.png", maxAvatarBytes + 1, upload},
		{"not an image", "fake.png", 12, []byte("not a png at")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			current, err := users.FindByID(ctx, registered.User.ID)
			if err != nil {
				t.Fatalf("find user: %v", err)
			}
			err = svc.SetAvatar(ctx, current, tc.filename, tc.size, bytes.NewReader(tc.body))
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}

			// A rejected upload must not disturb the stored avatar.
			stored, err := users.FindByID(ctx, registered.User.ID)
			if err != nil {
				t.Fatalf("find user: %v", err)
			}
			if !bytes.Equal(stored.Avatar, before.Avatar) {
				t.Fatalf("stored avatar changed after rejected upload")
			}
		})
	}
}

func TestUserService_DeleteAvatar(t *testing.T) {
	users := newStubUserRepo()
	svc, _, _ := newTestUserService(users, newStubTaskRepo())
	registered := registerAlice(t, svc)
	ctx := context.Background()

	upload := tinyPNG(t, 30, 30)
	if err := svc.SetAvatar(ctx, registered.User, "me.png", int64(len(upload)), bytes.NewReader(upload)); err != nil {
		t.Fatalf("SetAvatar failed: %v", err)
	}
	if err := svc.DeleteAvatar(ctx, registered.User); err != nil {
		t.Fatalf("DeleteAvatar failed: %v", err)
	}

	if _, err := svc.Avatar(ctx, registered.User.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found after avatar delete, got %v", err)
	}
}

func TestUserService_Avatar(t *testing.T) {
	users := newStubUserRepo()
	svc, _, _ := newTestUserService(users, newStubTaskRepo())
	registered := registerAlice(t, svc)
	ctx := context.Background()

	// No avatar yet and unknown user both report not found.
	if _, err := svc.Avatar(ctx, registered.User.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found for avatarless user, got %v", err)
	}
	if _, err := svc.Avatar(ctx, "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}

	upload := tinyPNG(t, 30, 30)
	if err := svc.SetAvatar(ctx, registered.User, "me.jpeg", int64(len(upload)), bytes.NewReader(upload)); err != nil {
		t.Fatalf("SetAvatar failed: %v", err)
	}

	data, err := svc.Avatar(ctx, registered.User.ID)
	if err != nil {
		t.Fatalf("Avatar failed: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("served avatar is not a PNG: %v", err)
	}
}
