package service

import (
	"context"
	"errors"
	"path"
	"strings"
	"testing"
	"time"

	"titanfit/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type attachmentFixture struct {
	svc         AttachmentService
	sessionRepo *fakeSessionRepo
	coachID     primitive.ObjectID
	clientID    primitive.ObjectID
	session     *domain.Session
}

func newAttachmentFixture(t *testing.T) *attachmentFixture {
	t.Helper()
	f := &attachmentFixture{
		sessionRepo: newFakeSessionRepo(),
		coachID:     primitive.NewObjectID(),
		clientID:    primitive.NewObjectID(),
	}
	f.svc = NewAttachmentService(newFakeAttachmentRepo(), f.sessionRepo, &fakeFileStorage{})

	f.session = &domain.Session{
		CoachID:  f.coachID,
		ClientID: f.clientID,
		Kind:     domain.SessionCardio,
		Date:     time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC),
		Name:     "Tempo run",
	}
	if _, err := f.sessionRepo.Create(context.Background(), f.session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return f
}

func TestRequestUploadURL(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()

	resp, err := f.svc.RequestUploadURL(ctx, f.clientID, f.session.ID, "image/jpeg")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	wantPrefix := path.Join("attachments", f.clientID.Hex(), f.session.ID.Hex()) + "/"
	if !strings.HasPrefix(resp.ObjectKey, wantPrefix) {
		t.Errorf("objectKey = %q, want prefix %q", resp.ObjectKey, wantPrefix)
	}
	if !strings.HasSuffix(resp.UploadURL, resp.ObjectKey) {
		t.Errorf("uploadURL = %q does not target the object key", resp.UploadURL)
	}

	// Keys are unique per request.
	again, err := f.svc.RequestUploadURL(ctx, f.clientID, f.session.ID, "image/jpeg")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if again.ObjectKey == resp.ObjectKey {
		t.Errorf("object key reused across requests")
	}

	// Only the session's own client may upload.
	if _, err := f.svc.RequestUploadURL(ctx, primitive.NewObjectID(), f.session.ID, "image/jpeg"); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("foreign client err = %v, want ErrAccessDenied", err)
	}
	if _, err := f.svc.RequestUploadURL(ctx, f.clientID, primitive.NewObjectID(), "image/jpeg"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("missing session err = %v, want ErrSessionNotFound", err)
	}
}

func TestConfirmUpload(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()

	resp, err := f.svc.RequestUploadURL(ctx, f.clientID, f.session.ID, "image/jpeg")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	attachment, err := f.svc.ConfirmUpload(ctx, f.clientID, f.session.ID, resp.ObjectKey, "leg-day.jpg", "image/jpeg", 123456)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if attachment.ID.IsZero() {
		t.Errorf("attachment has no id")
	}
	if attachment.CoachID != f.coachID {
		t.Errorf("coachID = %s, want the session's coach", attachment.CoachID.Hex())
	}
	if attachment.FileName != "leg-day.jpg" {
		t.Errorf("fileName = %q", attachment.FileName)
	}

	// Path components in the file name are stripped.
	withPath, err := f.svc.ConfirmUpload(ctx, f.clientID, f.session.ID, resp.ObjectKey, "../../etc/passwd", "text/plain", 10)
	if err != nil {
		t.Fatalf("confirm with path: %v", err)
	}
	if withPath.FileName != "passwd" {
		t.Errorf("fileName = %q, want base name only", withPath.FileName)
	}

	// A key outside the caller's prefix is rejected.
	foreignKey := path.Join("attachments", primitive.NewObjectID().Hex(), f.session.ID.Hex(), "x")
	if _, err := f.svc.ConfirmUpload(ctx, f.clientID, f.session.ID, foreignKey, "a.jpg", "image/jpeg", 1); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("foreign key err = %v, want ErrAccessDenied", err)
	}
}

func TestDownloadAuthorization(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()

	resp, err := f.svc.RequestUploadURL(ctx, f.clientID, f.session.ID, "image/jpeg")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	attachment, err := f.svc.ConfirmUpload(ctx, f.clientID, f.session.ID, resp.ObjectKey, "a.jpg", "image/jpeg", 1)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	// Both parties of the session may download; strangers may not.
	if _, err := f.svc.GetDownloadURL(ctx, f.coachID, domain.RoleCoach, attachment.ID); err != nil {
		t.Errorf("coach download: %v", err)
	}
	if _, err := f.svc.GetDownloadURL(ctx, f.clientID, domain.RoleClient, attachment.ID); err != nil {
		t.Errorf("client download: %v", err)
	}
	if _, err := f.svc.GetDownloadURL(ctx, primitive.NewObjectID(), domain.RoleCoach, attachment.ID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("foreign coach err = %v, want ErrAccessDenied", err)
	}
	if _, err := f.svc.GetDownloadURL(ctx, f.coachID, domain.RoleCoach, primitive.NewObjectID()); !errors.Is(err, ErrAttachmentNotFound) {
		t.Errorf("missing attachment err = %v, want ErrAttachmentNotFound", err)
	}
}

func TestGetSessionAttachments(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()

	// An attachment-less session lists as empty, not nil.
	list, err := f.svc.GetSessionAttachments(ctx, f.coachID, domain.RoleCoach, f.session.ID)
	if err != nil {
		t.Fatalf("empty list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("empty list = %v, want empty non-nil slice", list)
	}

	resp, err := f.svc.RequestUploadURL(ctx, f.clientID, f.session.ID, "image/jpeg")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.svc.ConfirmUpload(ctx, f.clientID, f.session.ID, resp.ObjectKey, "a.jpg", "image/jpeg", 1); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	list, err = f.svc.GetSessionAttachments(ctx, f.clientID, domain.RoleClient, f.session.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list = %d, want 1", len(list))
	}

	if _, err := f.svc.GetSessionAttachments(ctx, primitive.NewObjectID(), domain.RoleClient, f.session.ID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("foreign list err = %v, want ErrAccessDenied", err)
	}
}
