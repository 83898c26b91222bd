package api

import (
	"errors"
	"net/http"

	"titanfit/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AttachmentHandler exposes session file attachments. Clients upload through
// presigned URLs; both parties download the same way.
type AttachmentHandler struct {
	attachmentService service.AttachmentService
}

func NewAttachmentHandler(attachmentService service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// --- DTOs for Attachments ---

type RequestUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size" binding:"min=0"`
}

type DownloadURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// --- Handler Methods ---

// RequestUploadURL godoc
// @Summary Get a presigned upload URL for a session attachment
// @Description The client PUTs the file to the returned URL, then confirms the upload.
// @Tags Attachments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Param request body RequestUploadRequest true "Content type of the file"
// @Success 200 {object} service.UploadURLResponse
// @Failure 404 {object} gin.H "Session not found"
// @Router /client/sessions/{sessionId}/attachments/upload-url [post]
func (h *AttachmentHandler) RequestUploadURL(c *gin.Context) {
	var req RequestUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	clientID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	resp, err := h.attachmentService.RequestUploadURL(c.Request.Context(), clientID, sessionID, req.ContentType)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConfirmUpload godoc
// @Summary Confirm an attachment upload
// @Description Records the attachment metadata after the file was PUT to the presigned URL.
// @Tags Attachments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Param request body ConfirmUploadRequest true "Uploaded object details"
// @Success 201 {object} domain.Attachment
// @Failure 403 {object} gin.H "Object key outside the caller's prefix"
// @Router /client/sessions/{sessionId}/attachments [post]
func (h *AttachmentHandler) ConfirmUpload(c *gin.Context) {
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	clientID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	attachment, err := h.attachmentService.ConfirmUpload(c.Request.Context(), clientID, sessionID, req.ObjectKey, req.FileName, req.ContentType, req.Size)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attachment)
}

// GetSessionAttachments godoc
// @Summary List a session's attachments
// @Tags Attachments
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {array} domain.Attachment
// @Failure 403 {object} gin.H "Not a party to this session"
// @Router /sessions/{sessionId}/attachments [get]
func (h *AttachmentHandler) GetSessionAttachments(c *gin.Context) {
	userID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify role from token.")
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	attachments, err := h.attachmentService.GetSessionAttachments(c.Request.Context(), userID, role, sessionID)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, attachments)
}

// GetDownloadURL godoc
// @Summary Get a presigned download URL for an attachment
// @Tags Attachments
// @Produce json
// @Security BearerAuth
// @Param attachmentId path string true "Attachment ID"
// @Success 200 {object} DownloadURLResponse
// @Failure 404 {object} gin.H "Attachment not found"
// @Router /attachments/{attachmentId}/download-url [get]
func (h *AttachmentHandler) GetDownloadURL(c *gin.Context) {
	userID, ok := getUserObjectID(c)
	if !ok {
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify role from token.")
		return
	}
	attachmentID, ok := parseIDParam(c, "attachmentId")
	if !ok {
		return
	}

	url, err := h.attachmentService.GetDownloadURL(c.Request.Context(), userID, role, attachmentID)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, DownloadURLResponse{DownloadURL: url})
}

// respondAttachmentError maps attachment service errors to HTTP status codes.
func respondAttachmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttachmentNotFound), errors.Is(err, service.ErrSessionNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrUploadFailed):
		abortWithError(c, http.StatusBadGateway, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
