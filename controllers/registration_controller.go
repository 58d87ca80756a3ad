// controllers/registration_controller.go
package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/middleware"
	"github.com/evea/evea_backend/models"
	"github.com/evea/evea_backend/services"
)

// Form keys of the documents step that are not files
const (
	formBankDetails         = "bankDetails"
	formRegistrationNumbers = "registrationNumbers"
	formReuploadFile        = "file"
)

type RegistrationController struct {
	registrations *services.RegistrationService
	timeout       time.Duration
}

func NewRegistrationController(registrations *services.RegistrationService, timeout time.Duration) *RegistrationController {
	return &RegistrationController{registrations: registrations, timeout: timeout}
}

func (rc *RegistrationController) context(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), rc.timeout)
}

// SubmitStep1 creates the registration from business info and credentials
func (rc *RegistrationController) SubmitStep1(c echo.Context) error {
	var req models.Step1Request
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := rc.context(c)
	defer cancel()

	res, err := rc.registrations.SubmitStep1(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusCreated, "Business information saved", res)
}

// SubmitStep2 accepts the multipart documents step.
// Every file part is keyed by its document type.
func (rc *RegistrationController) SubmitStep2(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "Failed to parse form data")
	}
	defer form.RemoveAll()

	sub, err := parseStep2Form(form)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := rc.context(c)
	defer cancel()

	res, err := rc.registrations.SubmitStep2(ctx, middleware.BearerToken(c), sub)
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, "Documents uploaded", res)
}

func (rc *RegistrationController) SubmitStep3(c echo.Context) error {
	var req models.Step3Request
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := rc.context(c)
	defer cancel()

	res, err := rc.registrations.SubmitStep3(ctx, middleware.BearerToken(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, "Registration submitted for review", res)
}

func (rc *RegistrationController) Progress(c echo.Context) error {
	ctx, cancel := rc.context(c)
	defer cancel()

	res, err := rc.registrations.Progress(ctx, middleware.BearerToken(c))
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, "Registration progress retrieved", res)
}

func (rc *RegistrationController) VerifyEmail(c echo.Context) error {
	ctx, cancel := rc.context(c)
	defer cancel()

	reg, err := rc.registrations.VerifyEmail(ctx, c.QueryParam("token"))
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, "Email verified", map[string]interface{}{
		"registrationId": reg.ID.Hex(),
		"email":          reg.BusinessInfo.Email,
		"emailVerified":  reg.EmailVerified,
	})
}

// Statuses lists status presentation and document upload rules for clients
func (rc *RegistrationController) Statuses(c echo.Context) error {
	return reply(c, http.StatusOK, "Registration statuses retrieved", map[string]interface{}{
		"statuses":         models.StatusCatalog(),
		"documentPolicies": rc.registrations.Policies(),
	})
}

// GetMyRegistration returns the logged in vendor's registration
func (rc *RegistrationController) GetMyRegistration(c echo.Context) error {
	vendorID, err := middleware.ExtractUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := rc.context(c)
	defer cancel()

	res, err := rc.registrations.GetRegistration(ctx, vendorID)
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, "Registration retrieved", res)
}

func (rc *RegistrationController) ReuploadDocument(c echo.Context) error {
	vendorID, err := middleware.ExtractUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	fh, err := c.FormFile(formReuploadFile)
	if err != nil {
		return respondError(c, validationError(formReuploadFile, "required", "A file is required"))
	}
	doc, err := readDocument(models.DocumentType(c.Param("type")), fh)
	if err != nil {
		return badRequest(c, "Failed to read uploaded file")
	}

	ctx, cancel := rc.context(c)
	defer cancel()

	res, err := rc.registrations.ReuploadDocument(ctx, vendorID, doc)
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, "Document replaced", res)
}

func (rc *RegistrationController) Resubmit(c echo.Context) error {
	vendorID, err := middleware.ExtractUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := rc.context(c)
	defer cancel()

	res, err := rc.registrations.ResubmitForReview(ctx, vendorID)
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, "Registration resubmitted for review", res)
}

// parseStep2Form reads bank details, registration numbers and one upload per file part.
// The structured fields may be sent as JSON strings or as flat form fields.
func parseStep2Form(form *multipart.Form) (models.Step2Submission, error) {
	var sub models.Step2Submission

	if err := decodeFormJSON(form, formBankDetails, &sub.BankDetails); err != nil {
		return sub, err
	}
	if sub.BankDetails == (models.BankDetails{}) {
		sub.BankDetails = models.BankDetails{
			AccountHolderName: formValue(form, "accountHolderName"),
			AccountNumber:     formValue(form, "accountNumber"),
			IFSCCode:          formValue(form, "ifscCode"),
			BankName:          formValue(form, "bankName"),
			BranchName:        formValue(form, "branchName"),
		}
	}

	if err := decodeFormJSON(form, formRegistrationNumbers, &sub.RegistrationNumbers); err != nil {
		return sub, err
	}
	if sub.RegistrationNumbers == (models.RegistrationNumbers{}) {
		sub.RegistrationNumbers = models.RegistrationNumbers{
			PANNumber:                  formValue(form, "panNumber"),
			GSTNumber:                  formValue(form, "gstNumber"),
			BusinessRegistrationNumber: formValue(form, "businessRegistrationNumber"),
		}
	}

	keys := make([]string, 0, len(form.File))
	for key := range form.File {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, fh := range form.File[key] {
			doc, err := readDocument(models.DocumentType(key), fh)
			if err != nil {
				return sub, fmt.Errorf("reading %s: %w", key, err)
			}
			sub.Documents = append(sub.Documents, doc)
		}
	}
	return sub, nil
}

func decodeFormJSON(form *multipart.Form, key string, dst interface{}) error {
	raw := formValue(form, key)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return validationError(key, "json", "Must be a valid JSON object")
	}
	return nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

func readDocument(docType models.DocumentType, fh *multipart.FileHeader) (models.DocumentUpload, error) {
	src, err := fh.Open()
	if err != nil {
		return models.DocumentUpload{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return models.DocumentUpload{}, err
	}
	return models.DocumentUpload{
		Type:     docType,
		FileName: fh.Filename,
		MimeType: fh.Header.Get(echo.HeaderContentType),
		Data:     data,
	}, nil
}

func validationError(field, rule, message string) error {
	return &apperrors.ValidationError{Fields: []apperrors.FieldError{{Field: field, Rule: rule, Message: message}}}
}
