package services

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/brunogcp/SafeGuard/internal/apperr"
	"github.com/brunogcp/SafeGuard/internal/crypto"
	"github.com/brunogcp/SafeGuard/internal/db/models"
	"github.com/brunogcp/SafeGuard/internal/storage"
	"github.com/brunogcp/SafeGuard/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentService has custody of document content: it encrypts on the way
// in, decrypts on the way out, and runs the multi-party signing protocol
// over the share roster.
type DocumentService struct {
	db       *gorm.DB
	material *crypto.Material
	store    *storage.FileStore
	logger   *zap.Logger
	metrics  *metrics.MetricsCollector
}

func NewDocumentService(
	db *gorm.DB,
	material *crypto.Material,
	store *storage.FileStore,
	logger *zap.Logger,
	metricsCollector *metrics.MetricsCollector,
) *DocumentService {
	return &DocumentService{
		db:       db,
		material: material,
		store:    store,
		logger:   logger.With(zap.String("service", "document_service")),
		metrics:  metricsCollector,
	}
}

// Create encrypts content, writes the blob through the file store and
// persists the document row. The IV never leaves the row.
func (ds *DocumentService) Create(ctx context.Context, ownerID uint, title, mimetype, originalName string, content []byte) (*models.Document, error) {
	start := time.Now()

	ciphertext, iv, err := ds.material.Box.Encrypt(content)
	if err != nil {
		return nil, fmt.Errorf("encrypt document: %w", err)
	}

	path, err := ds.store.Save(ownerID, originalName, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	doc := &models.Document{
		ID:       uuid.New().String(),
		Title:    title,
		FilePath: path,
		IV:       hex.EncodeToString(iv),
		Mimetype: mimetype,
		OwnerID:  ownerID,
	}
	if err := ds.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}

	ds.metrics.IncrementCounter("documents_uploaded", nil)
	ds.metrics.ObserveSize("document_size", float64(len(content)))
	ds.metrics.ObserveLatency("document_upload", time.Since(start))

	ds.logger.Info("Document created",
		zap.String("doc_id", doc.ID),
		zap.Uint("owner_id", ownerID),
		zap.Int("size", len(content)))
	return doc, nil
}

// List returns the documents owned by userID, newest first.
func (ds *DocumentService) List(ctx context.Context, userID uint) ([]models.Document, error) {
	var docs []models.Document
	if err := ds.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// findOne loads a document with its shares. When verifyUser is set, callers
// without ownership or shared access get NotFound, deliberately identical to
// the document being absent.
func (ds *DocumentService) findOne(ctx context.Context, docID string, userID uint, verifyUser bool) (*models.Document, error) {
	var doc models.Document
	err := ds.db.WithContext(ctx).
		Preload("SharedWith", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		First(&doc, "id = ?", docID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("document not found or you do not have permission to access it")
		}
		return nil, err
	}

	if verifyUser {
		hasAccess := doc.OwnerID == userID
		for _, share := range doc.SharedWith {
			if share.UserID == userID {
				hasAccess = true
				break
			}
		}
		if !hasAccess {
			return nil, apperr.NotFound("document not found or you do not have permission to access it")
		}
	}

	return &doc, nil
}

// Fetch decrypts and returns the document content for an authorized caller.
func (ds *DocumentService) Fetch(ctx context.Context, docID string, userID uint, verifyUser bool) ([]byte, *models.Document, error) {
	doc, err := ds.findOne(ctx, docID, userID, verifyUser)
	if err != nil {
		return nil, nil, err
	}

	ciphertext, err := ds.store.Read(doc.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("read document blob: %w", err)
	}

	plaintext, err := ds.material.Box.DecryptHexIV(ciphertext, doc.IV)
	if err != nil {
		return nil, nil, fmt.Errorf("decrypt document: %w", err)
	}
	return plaintext, doc, nil
}

// UpdateTitle renames a document for an authorized caller.
func (ds *DocumentService) UpdateTitle(ctx context.Context, docID string, userID uint, title string) (*models.Document, error) {
	doc, err := ds.findOne(ctx, docID, userID, true)
	if err != nil {
		return nil, err
	}

	if err := ds.db.WithContext(ctx).Model(doc).Update("title", title).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// Remove deletes the document row, its shares and the stored blob.
func (ds *DocumentService) Remove(ctx context.Context, docID string, userID uint) error {
	doc, err := ds.findOne(ctx, docID, userID, true)
	if err != nil {
		return err
	}

	err = ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Shares are removed for good so a later grant on the same pair is
		// not blocked by the unique index.
		if err := tx.Unscoped().Where("document_id = ?", docID).Delete(&models.SharedDocument{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Document{}, "id = ?", docID).Error
	})
	if err != nil {
		return err
	}

	if err := ds.store.Remove(doc.FilePath); err != nil {
		ds.logger.Warn("blob removal failed", zap.String("doc_id", docID), zap.Error(err))
	}

	ds.logger.Info("Document removed", zap.String("doc_id", docID), zap.Uint("user_id", userID))
	return nil
}

// Share grants read access to targetUserID. Re-sharing an existing grant
// resets its signed flag, which invalidates the old roster signature on the
// next verification.
func (ds *DocumentService) Share(ctx context.Context, docID string, targetUserID, callerID uint) (*models.SharedDocument, error) {
	if _, err := ds.findOne(ctx, docID, callerID, true); err != nil {
		return nil, err
	}

	var target models.User
	if err := ds.db.WithContext(ctx).First(&target, targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}

	var share models.SharedDocument
	err := ds.db.WithContext(ctx).
		Where("document_id = ? AND user_id = ?", docID, targetUserID).
		First(&share).Error
	switch {
	case err == nil:
		if err := ds.db.WithContext(ctx).Model(&share).Update("signed", false).Error; err != nil {
			return nil, err
		}
		share.Signed = false
	case errors.Is(err, gorm.ErrRecordNotFound):
		share = models.SharedDocument{
			DocumentID:  docID,
			UserID:      targetUserID,
			AccessLevel: models.AccessRead,
		}
		if err := ds.db.WithContext(ctx).Create(&share).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	ds.logger.Info("Document shared",
		zap.String("doc_id", docID),
		zap.Uint("user_id", targetUserID),
		zap.Uint("caller_id", callerID))
	return &share, nil
}

// Unshare revokes targetUserID's grant.
func (ds *DocumentService) Unshare(ctx context.Context, docID string, targetUserID, callerID uint) error {
	if _, err := ds.findOne(ctx, docID, callerID, true); err != nil {
		return err
	}

	res := ds.db.WithContext(ctx).Unscoped().
		Where("document_id = ? AND user_id = ?", docID, targetUserID).
		Delete(&models.SharedDocument{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("share not found")
	}

	ds.logger.Info("Share revoked", zap.String("doc_id", docID), zap.Uint("user_id", targetUserID))
	return nil
}

// Sign runs one signing round for userID: computes the content tag, marks
// the caller's share signed and re-signs the full roster. The three writes
// commit in a single serializable transaction so a concurrent share change
// can never leave a signature that disagrees with the persisted roster.
func (ds *DocumentService) Sign(ctx context.Context, docID string, userID uint) (string, error) {
	start := time.Now()

	var callerShare models.SharedDocument
	err := ds.db.WithContext(ctx).
		Where("document_id = ? AND user_id = ?", docID, userID).
		First(&callerShare).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.Forbidden("no share access to this document")
		}
		return "", err
	}

	plaintext, _, err := ds.Fetch(ctx, docID, userID, true)
	if err != nil {
		return "", err
	}
	crc := crypto.ChecksumTag(plaintext)

	err = ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Document{}).Where("id = ?", docID).
			Update("crc", crc).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.SharedDocument{}).
			Where("document_id = ? AND user_id = ?", docID, userID).
			Update("signed", true).Error; err != nil {
			return err
		}

		participants, err := ds.rosterTx(tx, docID)
		if err != nil {
			return err
		}

		signature, err := ds.material.Signer.Sign(participants)
		if err != nil {
			return err
		}

		return tx.Model(&models.Document{}).Where("id = ?", docID).
			Update("signature", signature).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return "", err
	}

	ds.metrics.IncrementCounter("documents_signed", nil)
	ds.metrics.ObserveLatency("document_sign", time.Since(start))

	ds.logger.Info("Document signed",
		zap.String("doc_id", docID),
		zap.Uint("user_id", userID),
		zap.String("crc", crc))
	return crc, nil
}

// VerifySign re-checks a completed signing round: the client-supplied tag
// against the stored one, the stored tag against the current content, and
// the stored signature against the current roster. Any drift rejects.
func (ds *DocumentService) VerifySign(ctx context.Context, docID, claimedCRC string) ([]string, error) {
	doc, err := ds.findOne(ctx, docID, 0, false)
	if err != nil {
		return nil, err
	}

	if doc.CRC == "" || doc.CRC != claimedCRC {
		return nil, apperr.Invalid("CRC code does not belong to this document")
	}

	plaintext, _, err := ds.Fetch(ctx, docID, 0, false)
	if err != nil {
		return nil, err
	}
	if !crypto.VerifyChecksumTag(plaintext, doc.CRC) {
		return nil, apperr.Invalid("invalid CRC code")
	}

	var shares []models.SharedDocument
	if err := ds.db.WithContext(ctx).
		Where("document_id = ?", docID).
		Order("id ASC").
		Find(&shares).Error; err != nil {
		return nil, err
	}

	participants := make([]crypto.Participant, len(shares))
	userIDs := make([]uint, len(shares))
	for i, share := range shares {
		participants[i] = crypto.Participant{
			ID:         share.ID,
			DocumentID: share.DocumentID,
			UserID:     share.UserID,
		}
		userIDs[i] = share.UserID
	}

	if err := ds.material.Signer.Verify(participants, doc.Signature); err != nil {
		if errors.Is(err, crypto.ErrBadSignature) {
			ds.metrics.IncrementCounter("signature_verifications_failed", nil)
			return nil, apperr.Invalid("invalid document signature")
		}
		return nil, err
	}

	var users []models.User
	if len(userIDs) > 0 {
		if err := ds.db.WithContext(ctx).Find(&users, userIDs).Error; err != nil {
			return nil, err
		}
	}
	emails := make(map[uint]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}

	attestations := make([]string, len(shares))
	for i, share := range shares {
		attestations[i] = "Signed by " + emails[share.UserID]
	}

	ds.metrics.IncrementCounter("signature_verifications", nil)
	return attestations, nil
}

// rosterTx lists the current roster inside tx, pinned to share row id order
// so the canonical payload is reproducible at verification time.
func (ds *DocumentService) rosterTx(tx *gorm.DB, docID string) ([]crypto.Participant, error) {
	var shares []models.SharedDocument
	if err := tx.
		Where("document_id = ?", docID).
		Order("id ASC").
		Find(&shares).Error; err != nil {
		return nil, err
	}

	participants := make([]crypto.Participant, len(shares))
	for i, share := range shares {
		participants[i] = crypto.Participant{
			ID:         share.ID,
			DocumentID: share.DocumentID,
			UserID:     share.UserID,
		}
	}
	return participants, nil
}
