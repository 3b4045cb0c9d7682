package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/brunogcp/SafeGuard/internal/apperr"
	"github.com/brunogcp/SafeGuard/internal/db/models"
	"github.com/brunogcp/SafeGuard/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	documentService *services.DocumentService
	maxFileSize     int64
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *services.DocumentService, maxFileSize int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxFileSize:     maxFileSize,
		logger:          logger.With(zap.String("handler", "document")),
	}
}

type shareRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
	UserID     uint   `json:"userId" binding:"required"`
}

type verifySignRequest struct {
	ID  string `json:"id" binding:"required"`
	CRC string `json:"crc" binding:"required"`
}

type updateDocumentRequest struct {
	Title string `json:"title" binding:"required"`
}

// documentResponse is the caller-facing projection of a document. The IV
// and signature stay server-side.
type documentResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	FilePath  string    `json:"filePath"`
	CRC       string    `json:"crc"`
	Mimetype  string    `json:"mimetype"`
	OwnerID   uint      `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toDocumentResponse(doc *models.Document) documentResponse {
	return documentResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		FilePath:  doc.FilePath,
		CRC:       doc.CRC,
		Mimetype:  doc.Mimetype,
		OwnerID:   doc.OwnerID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	userID := c.GetUint("userID")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	if !allowedExtensions[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only document files are allowed"})
		return
	}
	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title = fileHeader.Filename
	}

	doc, err := h.documentService.Create(
		c.Request.Context(),
		userID,
		title,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Filename,
		content,
	)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toDocumentResponse(doc))
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID := c.GetUint("userID")

	docs, err := h.documentService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	responses := make([]documentResponse, len(docs))
	for i := range docs {
		responses[i] = toDocumentResponse(&docs[i])
	}
	c.JSON(http.StatusOK, responses)
}

// Download streams the decrypted content with the stored mimetype.
func (h *DocumentHandler) Download(c *gin.Context) {
	userID := c.GetUint("userID")
	docID := c.Param("id")

	content, doc, err := h.documentService.Fetch(c.Request.Context(), docID, userID, true)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Data(http.StatusOK, doc.Mimetype, content)
}

func (h *DocumentHandler) Update(c *gin.Context) {
	userID := c.GetUint("userID")
	docID := c.Param("id")

	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.documentService.UpdateTitle(c.Request.Context(), docID, userID, req.Title)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toDocumentResponse(doc))
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	userID := c.GetUint("userID")
	docID := c.Param("id")

	if err := h.documentService.Remove(c.Request.Context(), docID, userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) CreateShare(c *gin.Context) {
	callerID := c.GetUint("userID")

	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	share, err := h.documentService.Share(c.Request.Context(), req.DocumentID, req.UserID, callerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, share)
}

func (h *DocumentHandler) DeleteShare(c *gin.Context) {
	callerID := c.GetUint("userID")

	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.documentService.Unshare(c.Request.Context(), req.DocumentID, req.UserID, callerID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Sign runs a signing round for the user named in the request. Share access
// is enforced by the service, so a caller cannot sign on behalf of a user
// outside the roster.
func (h *DocumentHandler) Sign(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	crc, err := h.documentService.Sign(c.Request.Context(), req.DocumentID, req.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": req.DocumentID, "crc": crc})
}

func (h *DocumentHandler) VerifySign(c *gin.Context) {
	var req verifySignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attestations, err := h.documentService.VerifySign(c.Request.Context(), req.ID, req.CRC)
	if err != nil {
		if apperr.IsKind(err, apperr.KindInvalid) {
			h.logger.Warn("signature verification rejected",
				zap.String("doc_id", req.ID))
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attestations": attestations})
}
