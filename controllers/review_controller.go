// controllers/review_controller.go
package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/evea/evea_backend/middleware"
	"github.com/evea/evea_backend/models"
	"github.com/evea/evea_backend/services"
)

// ReviewController exposes the reviewer workflow to admins
type ReviewController struct {
	reviews *services.ReviewService
	timeout time.Duration
}

func NewReviewController(reviews *services.ReviewService, timeout time.Duration) *ReviewController {
	return &ReviewController{reviews: reviews, timeout: timeout}
}

type reviewCall func(ctx context.Context, adminID, regID primitive.ObjectID, note string) (*models.VendorRegistration, error)

// ListRegistrations filters by ?status= with limit and skip paging
func (rc *ReviewController) ListRegistrations(c echo.Context) error {
	filter := models.RegistrationFilter{Status: models.RegistrationStatus(c.QueryParam("status"))}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "limit must be a number")
		}
		filter.Limit = limit
	}
	if v := c.QueryParam("skip"); v != "" {
		skip, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "skip must be a number")
		}
		filter.Skip = skip
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), rc.timeout)
	defer cancel()

	regs, err := rc.reviews.List(ctx, filter)
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, "Registrations retrieved", map[string]interface{}{
		"registrations": regs,
		"count":         len(regs),
	})
}

func (rc *ReviewController) GetRegistration(c echo.Context) error {
	regID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid registration ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), rc.timeout)
	defer cancel()

	reg, err := rc.reviews.Get(ctx, regID)
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, "Registration retrieved", models.NewRegistrationResult(reg, ""))
}

func (rc *ReviewController) VerifyDocument(c echo.Context) error {
	return rc.act(c, "Document verified", func(ctx context.Context, adminID, regID primitive.ObjectID, _ string) (*models.VendorRegistration, error) {
		return rc.reviews.VerifyDocument(ctx, adminID, regID, models.DocumentType(c.Param("type")))
	})
}

func (rc *ReviewController) UnverifyDocument(c echo.Context) error {
	return rc.act(c, "Document verification cleared", func(ctx context.Context, adminID, regID primitive.ObjectID, note string) (*models.VendorRegistration, error) {
		return rc.reviews.UnverifyDocument(ctx, adminID, regID, models.DocumentType(c.Param("type")), note)
	})
}

func (rc *ReviewController) Approve(c echo.Context) error {
	return rc.act(c, "Registration approved", rc.reviews.Approve)
}

func (rc *ReviewController) Reject(c echo.Context) error {
	return rc.act(c, "Registration rejected", rc.reviews.Reject)
}

func (rc *ReviewController) RequestDocuments(c echo.Context) error {
	return rc.act(c, "More documents requested", rc.reviews.RequestMoreDocuments)
}

func (rc *ReviewController) Suspend(c echo.Context) error {
	return rc.act(c, "Vendor suspended", rc.reviews.Suspend)
}

func (rc *ReviewController) Reinstate(c echo.Context) error {
	return rc.act(c, "Vendor reinstated", rc.reviews.Reinstate)
}

// act resolves the reviewer and registration, reads the optional note and runs call
func (rc *ReviewController) act(c echo.Context, message string, call reviewCall) error {
	adminID, err := middleware.ExtractUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	regID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid registration ID")
	}

	// the note is validated by the service; an empty body means no note
	var body struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), rc.timeout)
	defer cancel()

	reg, err := call(ctx, adminID, regID, body.Note)
	if err != nil {
		return respondError(c, err)
	}
	return reply(c, http.StatusOK, message, models.NewRegistrationResult(reg, ""))
}
