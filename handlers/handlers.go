// Package handlers maps the HTTP surface onto the domain services.
// Anonymous endpoints key on the public reportId token; moderator
// endpoints key on the internal numeric id surfaced by the listing.
package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"reportify/geocode"
	"reportify/models"
	"reportify/reports"
)

// ReportService is the triage collaborator.
type ReportService interface {
	Create(ctx context.Context, draft *models.ReportDraft) (*models.Report, error)
	Transition(ctx context.Context, actor string, id int64, newStatus string) (*models.Report, error)
	TrackByPublicID(ctx context.Context, reportID string) (*models.Report, error)
	List(ctx context.Context, statusFilter, typeFilter string) ([]models.Report, error)
}

// ImageClassifier is the photo-analysis collaborator.
type ImageClassifier interface {
	Classify(ctx context.Context, imageData []byte, mimeType string) models.ClassificationResult
}

// Geocoder is the reverse-geocoding collaborator.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*models.GeocodeResult, error)
}

// Handlers holds the service dependencies for all routes.
type Handlers struct {
	reports    ReportService
	classifier ImageClassifier
	geocoder   Geocoder
}

// New creates the handler set.
func New(reports ReportService, classifier ImageClassifier, geocoder Geocoder) *Handlers {
	return &Handlers{reports: reports, classifier: classifier, geocoder: geocoder}
}

// createReportResponse echoes the stored report at the top level, with
// the success flag alongside reportId, status, and the other fields.
type createReportResponse struct {
	Success bool `json:"success"`
	models.Report
}

// CreateReport handles POST /api/v3/reports.
func (h *Handlers) CreateReport(c *gin.Context) {
	var draft models.ReportDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	report, err := h.reports.Create(c.Request.Context(), &draft)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createReportResponse{Success: true, Report: *report})
}

// GetReport handles GET /api/v3/reports/:reportId (anonymous tracking).
func (h *Handlers) GetReport(c *gin.Context) {
	report, err := h.reports.TrackByPublicID(c.Request.Context(), c.Param("reportId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListReports handles GET /api/v3/reports for the moderator dashboard,
// with optional status and type query filters.
func (h *Handlers) ListReports(c *gin.Context) {
	list, err := h.reports.List(c.Request.Context(), c.Query("status"), c.Query("type"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if list == nil {
		list = []models.Report{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": list, "count": len(list)})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateReportStatus handles PATCH /api/v3/reports/id/:id/status. The id
// is the internal numeric key; the actor comes from the auth middleware.
func (h *Handlers) UpdateReportStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actor := c.GetString("user_id")
	report, err := h.reports.Transition(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type analyzeImageRequest struct {
	Image string `json:"image"`
}

// AnalyzeImage handles POST /api/v3/analyze-image. Classification is
// best-effort prefill: the response is always 200 with a success flag,
// except for a request that is not a usable data URI.
func (h *Handlers) AnalyzeImage(c *gin.Context) {
	var req analyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	imageData, mimeType, err := decodeDataURL(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be a base64 data URI"})
		return
	}

	result := h.classifier.Classify(c.Request.Context(), imageData, mimeType)
	c.JSON(http.StatusOK, result)
}

// reverseGeocodeRequest accepts only JSON numbers for the coordinates.
// A string latitude is a malformed request, rejected before any provider
// call.
type reverseGeocodeRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ReverseGeocode handles POST /api/v3/reverse-geocode.
func (h *Handlers) ReverseGeocode(c *gin.Context) {
	var req reverseGeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude must be numbers"})
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})
		return
	}

	result, err := h.geocoder.ReverseGeocode(c.Request.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "reportify"})
}

// writeError translates the domain error taxonomy into status codes.
func (h *Handlers) writeError(c *gin.Context, err error) {
	var vErr *reports.ValidationError
	var pErr *geocode.ProviderError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
	case errors.Is(err, reports.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, reports.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
	case errors.As(err, &pErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "geocoding provider error"})
	case errors.Is(err, geocode.ErrNoAPIKey):
		log.Errorf("geocoding requested without a configured API key")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "geocoding is not configured"})
	default:
		log.WithError(err).Errorf("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// decodeDataURL splits a base64 image data URI into payload bytes and
// MIME type. Non-image MIME types are rejected.
func decodeDataURL(dataURL string) ([]byte, string, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, "", errors.New("not a data URI")
	}
	rest := strings.TrimPrefix(dataURL, "data:")

	semi := strings.Index(rest, ";base64,")
	if semi < 0 {
		return nil, "", errors.New("missing base64 payload")
	}
	mimeType := rest[:semi]
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", errors.New("not an image MIME type")
	}

	payload, err := base64.StdEncoding.DecodeString(rest[semi+len(";base64,"):])
	if err != nil {
		return nil, "", err
	}
	if len(payload) == 0 {
		return nil, "", errors.New("empty image payload")
	}
	return payload, mimeType, nil
}
