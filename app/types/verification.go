package types

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/labstack/echo/v4"
)

type GetVerificationRequest struct {
	SubscriberID string
}

func NewGetVerificationRequestFromContext(ctx echo.Context) (*GetVerificationRequest, error) {
	return &GetVerificationRequest{
		SubscriberID: strings.TrimSpace(ctx.QueryParam("subscriber_id")),
	}, nil
}

func (r *GetVerificationRequest) Validate() error {
	if r.SubscriberID == "" {
		return errors.New("subscriber_id is required")
	}
	return nil
}

type UploadVerificationRequest struct {
	SubscriberID string
	DocumentType string
	Document     *multipart.FileHeader
}

func NewUploadVerificationRequestFromContext(ctx echo.Context) (*UploadVerificationRequest, error) {
	document, err := ctx.FormFile("document")
	if err != nil {
		return nil, err
	}

	return &UploadVerificationRequest{
		SubscriberID: strings.TrimSpace(ctx.FormValue("subscriber_id")),
		DocumentType: strings.ToLower(strings.TrimSpace(ctx.FormValue("document_type"))),
		Document:     document,
	}, nil
}

func (r *UploadVerificationRequest) Validate() error {
	if r.SubscriberID == "" {
		return errors.New("subscriber_id is required")
	}
	if r.DocumentType == "" {
		return errors.New("document_type is required")
	}
	if r.Document == nil {
		return errors.New("document file is required")
	}
	return nil
}
