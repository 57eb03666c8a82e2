package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-account-settings/app/entity"
	"github.com/vibast-solutions/ms-go-account-settings/app/factory"
	"github.com/vibast-solutions/ms-go-account-settings/app/mapper"
	"github.com/vibast-solutions/ms-go-account-settings/app/service"
	"github.com/vibast-solutions/ms-go-account-settings/app/types"
)

type verificationService interface {
	Latest(ctx context.Context, subscriberID string) (*entity.VerificationRecord, error)
	UploadDocument(ctx context.Context, in *service.UploadDocumentInput) (*entity.VerificationRecord, error)
}

type VerificationController struct {
	verificationService verificationService
	logger              logrus.FieldLogger
}

func NewVerificationController(verificationService verificationService) *VerificationController {
	return &VerificationController{
		verificationService: verificationService,
		logger:              factory.NewModuleLogger("verification-controller"),
	}
}

func (c *VerificationController) GetVerification(ctx echo.Context) error {
	req, err := types.NewGetVerificationRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	record, err := c.verificationService.Latest(ctx.Request().Context(), req.SubscriberID)
	if err != nil {
		return c.handleVerificationError(ctx, err, "Get verification failed")
	}

	resp := mapper.VerificationToResponse(record)
	return ctx.JSON(http.StatusOK, &resp)
}

func (c *VerificationController) UploadVerification(ctx echo.Context) error {
	req, err := types.NewUploadVerificationRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "document file is required")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	file, err := req.Document.Open()
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "document file could not be read")
	}
	defer file.Close()

	record, err := c.verificationService.UploadDocument(ctx.Request().Context(), &service.UploadDocumentInput{
		SubscriberID: req.SubscriberID,
		DocumentType: req.DocumentType,
		Content:      file,
		DeclaredSize: req.Document.Size,
	})
	if err != nil {
		return c.handleVerificationError(ctx, err, "Upload verification document failed")
	}

	resp := mapper.VerificationToResponse(record)
	return ctx.JSON(http.StatusCreated, &resp)
}

func (c *VerificationController) handleVerificationError(ctx echo.Context, err error, logMessage string) error {
	switch {
	case errors.Is(err, service.ErrInvalidSubscriberID):
		return writeError(ctx, http.StatusBadRequest, "subscriber id is not valid")
	case errors.Is(err, service.ErrUnknownDocumentType):
		return writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnsupportedDocumentType):
		return writeError(ctx, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrDocumentTooLarge):
		return writeError(ctx, http.StatusRequestEntityTooLarge, err.Error())
	default:
		c.logger.WithError(err).Error(logMessage)
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}
