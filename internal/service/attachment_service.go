package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"titanfit/coach-app/internal/domain"
	"titanfit/coach-app/internal/repository"
	"titanfit/coach-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrUploadFailed       = errors.New("failed to prepare or confirm upload")
)

// --- DTOs ---

// UploadURLResponse holds the presigned URL and the object key the client
// must echo back when confirming the upload.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Service Interface ---

// AttachmentService manages files attached to scheduled sessions.
type AttachmentService interface {
	RequestUploadURL(ctx context.Context, clientID, sessionID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmUpload(ctx context.Context, clientID, sessionID primitive.ObjectID, objectKey, fileName, contentType string, size int64) (*domain.Attachment, error)
	GetDownloadURL(ctx context.Context, userID primitive.ObjectID, role domain.Role, attachmentID primitive.ObjectID) (string, error)
	GetSessionAttachments(ctx context.Context, userID primitive.ObjectID, role domain.Role, sessionID primitive.ObjectID) ([]domain.Attachment, error)
}

// --- Service Implementation ---

type attachmentService struct {
	attachmentRepo repository.AttachmentRepository
	sessionRepo    repository.SessionRepository
	fileStorage    storage.FileStorage
}

// NewAttachmentService creates a new instance of attachmentService.
func NewAttachmentService(
	attachmentRepo repository.AttachmentRepository,
	sessionRepo repository.SessionRepository,
	fileStorage storage.FileStorage,
) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		sessionRepo:    sessionRepo,
		fileStorage:    fileStorage,
	}
}

// RequestUploadURL generates a presigned PUT URL for attaching a file to a session.
func (s *attachmentService) RequestUploadURL(ctx context.Context, clientID, sessionID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	// 1. Validate Input
	if contentType == "" {
		return nil, errors.New("content type cannot be empty")
	}

	// 2. Verify the session exists and belongs to this client
	if _, err := s.getClientSession(ctx, clientID, sessionID); err != nil {
		return nil, err
	}

	// 3. Generate a unique object key scoped to the client and session
	objectKey := path.Join("attachments", clientID.Hex(), sessionID.Hex(), uuid.NewString())

	// 4. Ask storage for a presigned upload URL
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return &UploadURLResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// ConfirmUpload records attachment metadata after the client has PUT the object.
func (s *attachmentService) ConfirmUpload(ctx context.Context, clientID, sessionID primitive.ObjectID, objectKey, fileName, contentType string, size int64) (*domain.Attachment, error) {
	// 1. Validate Input
	if objectKey == "" || fileName == "" {
		return nil, errors.New("object key and file name cannot be empty")
	}
	if size < 0 {
		return nil, errors.New("size cannot be negative")
	}
	// Reject keys outside the client's own upload prefix.
	expectedPrefix := path.Join("attachments", clientID.Hex(), sessionID.Hex()) + "/"
	if len(objectKey) <= len(expectedPrefix) || objectKey[:len(expectedPrefix)] != expectedPrefix {
		return nil, ErrAccessDenied
	}

	// 2. Verify the session exists and belongs to this client
	session, err := s.getClientSession(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}

	// 3. Persist the attachment metadata
	attachment := &domain.Attachment{
		SessionID:   sessionID,
		ClientID:    clientID,
		CoachID:     session.CoachID,
		S3ObjectKey: objectKey,
		FileName:    filepath.Base(fileName),
		ContentType: contentType,
		Size:        size,
		UploadedAt:  time.Now(),
	}

	attachmentID, err := s.attachmentRepo.Create(ctx, attachment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	attachment.ID = attachmentID

	return attachment, nil
}

// GetDownloadURL generates a presigned GET URL for an attachment the user may view.
func (s *attachmentService) GetDownloadURL(ctx context.Context, userID primitive.ObjectID, role domain.Role, attachmentID primitive.ObjectID) (string, error) {
	attachment, err := s.attachmentRepo.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAttachmentNotFound
		}
		return "", err
	}

	if err := authorizeAttachmentAccess(attachment, userID, role); err != nil {
		return "", err
	}

	return s.fileStorage.GeneratePresignedDownloadURL(ctx, attachment.S3ObjectKey, storage.DefaultPresignedURLExpiry)
}

// GetSessionAttachments lists attachment metadata for a session the user may view.
func (s *attachmentService) GetSessionAttachments(ctx context.Context, userID primitive.ObjectID, role domain.Role, sessionID primitive.ObjectID) ([]domain.Attachment, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	switch role {
	case domain.RoleCoach:
		if session.CoachID != userID {
			return nil, ErrAccessDenied
		}
	case domain.RoleClient:
		if session.ClientID != userID {
			return nil, ErrAccessDenied
		}
	default:
		return nil, ErrAccessDenied
	}

	attachments, err := s.attachmentRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	return attachments, nil
}

// --- Helpers ---

func (s *attachmentService) getClientSession(ctx context.Context, clientID, sessionID primitive.ObjectID) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.ClientID != clientID {
		return nil, ErrAccessDenied
	}
	return session, nil
}

func authorizeAttachmentAccess(attachment *domain.Attachment, userID primitive.ObjectID, role domain.Role) error {
	switch role {
	case domain.RoleCoach:
		if attachment.CoachID != userID {
			return ErrAccessDenied
		}
	case domain.RoleClient:
		if attachment.ClientID != userID {
			return ErrAccessDenied
		}
	default:
		return ErrAccessDenied
	}
	return nil
}
