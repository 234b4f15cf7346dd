package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/apex/log"

	"reportify/metrics"
	"reportify/models"
	"reportify/parser"
)

// Store is the persistence collaborator the service delegates to. Lookup
// methods return (nil, nil) when no row matches.
type Store interface {
	CreateReport(ctx context.Context, report *models.Report) (*models.Report, error)
	GetReportByID(ctx context.Context, id int64) (*models.Report, error)
	GetReportByPublicID(ctx context.Context, reportID string) (*models.Report, error)
	UpdateReportStatus(ctx context.Context, id int64, status models.ReportStatus) (*models.Report, error)
	ListReports(ctx context.Context, status models.ReportStatus, reportType models.ReportType) ([]models.Report, error)
}

// Service owns report validation, creation, and the status state machine.
type Service struct {
	store Store
	// strictCategories enforces the classifier vocabulary on
	// specificType. Off by default: the vocabulary stays open.
	strictCategories bool
}

// NewService creates the reports service.
func NewService(store Store, strictCategories bool) *Service {
	return &Service{store: store, strictCategories: strictCategories}
}

// Create validates a draft and persists it. Validation failures perform
// no persistence side effect. The public report identifier is minted by
// the caller and treated as an opaque string here.
func (s *Service) Create(ctx context.Context, draft *models.ReportDraft) (*models.Report, error) {
	required := []struct {
		field string
		value string
	}{
		{"reportId", draft.ReportID},
		{"type", draft.Type},
		{"specificType", draft.SpecificType},
		{"title", draft.Title},
		{"description", draft.Description},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, validationErrf(f.field, "required field is missing")
		}
	}

	reportType := models.ReportType(draft.Type)
	if !reportType.Valid() {
		return nil, validationErrf("type", "%q must be EMERGENCY or NON_EMERGENCY", draft.Type)
	}

	if s.strictCategories && !parser.KnownCategory(draft.SpecificType) {
		return nil, validationErrf("specificType", "%q is not a known category", draft.SpecificType)
	}

	status := models.StatusPending
	if draft.Status != "" {
		status = models.ReportStatus(draft.Status)
		if !status.Valid() {
			return nil, validationErrf("status", "%q is not a valid status", draft.Status)
		}
	}

	latitude, err := parseCoordinate("latitude", draft.Latitude)
	if err != nil {
		return nil, err
	}
	longitude, err := parseCoordinate("longitude", draft.Longitude)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		ReportID:     draft.ReportID,
		Type:         reportType,
		SpecificType: draft.SpecificType,
		Title:        draft.Title,
		Description:  draft.Description,
		Location:     optionalString(draft.Location),
		Latitude:     latitude,
		Longitude:    longitude,
		Image:        optionalString(draft.Image),
		Status:       status,
	}

	stored, err := s.store.CreateReport(ctx, report)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("store returned no row for created report %s", report.ReportID)
	}

	log.Infof("report %s created (type=%s, specificType=%s)", stored.ReportID, stored.Type, stored.SpecificType)
	metrics.ReportsCreatedTotal.WithLabelValues(string(stored.Type)).Inc()
	return stored, nil
}

// Transition moves a report to a new status on behalf of an authenticated
// moderator. The actor check happens before any lookup; unauthenticated
// callers learn nothing about report existence.
func (s *Service) Transition(ctx context.Context, actor string, id int64, newStatus string) (*models.Report, error) {
	if actor == "" {
		return nil, ErrUnauthorized
	}

	status := models.ReportStatus(newStatus)
	if !status.Valid() {
		return nil, validationErrf("status", "%q is not a valid status", newStatus)
	}

	report, err := s.store.GetReportByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrNotFound
	}

	if !CanTransition(report.Status, status) {
		return nil, validationErrf("status", "cannot transition from %s to %s", report.Status, status)
	}

	updated, err := s.store.UpdateReportStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	log.Infof("report %s moved %s -> %s by %s", updated.ReportID, report.Status, status, actor)
	metrics.StatusTransitionsTotal.WithLabelValues(string(status)).Inc()
	return updated, nil
}

// TrackByPublicID resolves a report for anonymous tracking. The token is
// the submitter's sole credential; no authentication is required.
func (s *Service) TrackByPublicID(ctx context.Context, reportID string) (*models.Report, error) {
	if strings.TrimSpace(reportID) == "" {
		return nil, validationErrf("reportId", "required field is missing")
	}

	report, err := s.store.GetReportByPublicID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrNotFound
	}
	return report, nil
}

// List returns reports for the moderator dashboard with optional status
// and type filters.
func (s *Service) List(ctx context.Context, statusFilter, typeFilter string) ([]models.Report, error) {
	var status models.ReportStatus
	if statusFilter != "" {
		status = models.ReportStatus(statusFilter)
		if !status.Valid() {
			return nil, validationErrf("status", "%q is not a valid status", statusFilter)
		}
	}

	var reportType models.ReportType
	if typeFilter != "" {
		reportType = models.ReportType(typeFilter)
		if !reportType.Valid() {
			return nil, validationErrf("type", "%q must be EMERGENCY or NON_EMERGENCY", typeFilter)
		}
	}

	return s.store.ListReports(ctx, status, reportType)
}

// parseCoordinate coerces an optional JSON value into a float. Numbers
// and numeric strings are accepted; a malformed numeric string fails the
// whole creation rather than silently defaulting to null.
func parseCoordinate(field string, value any) (*float64, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		return &v, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, validationErrf(field, "%q is not a number", v.String())
		}
		return &f, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, validationErrf(field, "%q is not a number", v)
		}
		return &f, nil
	default:
		return nil, validationErrf(field, "unsupported value of type %T", value)
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
