package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-account-settings/app/document"
	"github.com/vibast-solutions/ms-go-account-settings/app/entity"
	"github.com/vibast-solutions/ms-go-account-settings/app/factory"
	"github.com/vibast-solutions/ms-go-account-settings/config"
)

var subscriberIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// allowedDocumentMIMEs is the upload allow-list; anything else is rejected
// before a byte reaches storage.
var allowedDocumentMIMEs = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"application/pdf": {},
}

var allowedDocumentTypes = map[string]struct{}{
	"passport":       {},
	"national_id":    {},
	"driver_license": {},
}

type verificationRepository interface {
	Create(ctx context.Context, record *entity.VerificationRecord) error
	FindLatestBySubscriber(ctx context.Context, subscriberID string) (*entity.VerificationRecord, error)
}

type UploadDocumentInput struct {
	SubscriberID string
	DocumentType string
	Content      io.Reader
	// DeclaredSize is the multipart header size; the reader is still capped
	// independently in case the header lies.
	DeclaredSize int64
}

type VerificationService struct {
	verificationRepo verificationRepository
	store            document.Store
	cfg              config.VerificationConfig
	logger           logrus.FieldLogger
}

func NewVerificationService(verificationRepo verificationRepository, store document.Store, cfg config.VerificationConfig) *VerificationService {
	return &VerificationService{
		verificationRepo: verificationRepo,
		store:            store,
		cfg:              cfg,
		logger:           factory.NewModuleLogger("verification-service"),
	}
}

// Latest returns the subscriber's most recent verification record, or nil
// when none exists yet.
func (s *VerificationService) Latest(ctx context.Context, subscriberID string) (*entity.VerificationRecord, error) {
	if !subscriberIDPattern.MatchString(subscriberID) {
		return nil, ErrInvalidSubscriberID
	}
	return s.verificationRepo.FindLatestBySubscriber(ctx, subscriberID)
}

// UploadDocument validates the subscriber id, document type, size and content
// type before anything is stored; a rejected upload leaves prior records and
// storage untouched.
func (s *VerificationService) UploadDocument(ctx context.Context, in *UploadDocumentInput) (*entity.VerificationRecord, error) {
	if !subscriberIDPattern.MatchString(in.SubscriberID) {
		return nil, ErrInvalidSubscriberID
	}
	if _, ok := allowedDocumentTypes[in.DocumentType]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDocumentType, in.DocumentType)
	}
	if in.DeclaredSize > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrDocumentTooLarge, s.cfg.MaxUploadBytes)
	}

	content, err := io.ReadAll(io.LimitReader(in.Content, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrDocumentTooLarge, s.cfg.MaxUploadBytes)
	}

	detected := mimetype.Detect(content)
	if _, ok := allowedDocumentMIMEs[detected.String()]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocumentType, detected.String())
	}

	name := fmt.Sprintf("%s-%s%s", in.SubscriberID, uuid.NewString(), detected.Extension())
	path, err := s.store.Save(ctx, name, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &entity.VerificationRecord{
		SubscriberID: in.SubscriberID,
		DocumentType: in.DocumentType,
		StoragePath:  path,
		MimeType:     detected.String(),
		SizeBytes:    int64(len(content)),
		Status:       s.classify(in.DocumentType),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.verificationRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"subscriber_id": in.SubscriberID,
		"document_type": in.DocumentType,
		"status":        record.Status,
	}).Info("Verification document uploaded")

	return record, nil
}

// classify decides the initial status: document types on the auto-approve
// list complete immediately, everything else waits for manual review.
func (s *VerificationService) classify(documentType string) string {
	for _, autoType := range s.cfg.AutoApproveTypes {
		if autoType == documentType {
			return entity.VerificationStatusAutoApproved
		}
	}
	return entity.VerificationStatusPendingReview
}
