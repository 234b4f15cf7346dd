package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"reportify/geocode"
	"reportify/models"
	"reportify/reports"
)

type fakeReports struct {
	createFn     func(ctx context.Context, draft *models.ReportDraft) (*models.Report, error)
	transitionFn func(ctx context.Context, actor string, id int64, newStatus string) (*models.Report, error)
	trackFn      func(ctx context.Context, reportID string) (*models.Report, error)
	listFn       func(ctx context.Context, statusFilter, typeFilter string) ([]models.Report, error)
}

func (f *fakeReports) Create(ctx context.Context, draft *models.ReportDraft) (*models.Report, error) {
	return f.createFn(ctx, draft)
}

func (f *fakeReports) Transition(ctx context.Context, actor string, id int64, newStatus string) (*models.Report, error) {
	return f.transitionFn(ctx, actor, id, newStatus)
}

func (f *fakeReports) TrackByPublicID(ctx context.Context, reportID string) (*models.Report, error) {
	return f.trackFn(ctx, reportID)
}

func (f *fakeReports) List(ctx context.Context, statusFilter, typeFilter string) ([]models.Report, error) {
	return f.listFn(ctx, statusFilter, typeFilter)
}

type fakeClassifier struct {
	result models.ClassificationResult
	called bool
	data   []byte
	mime   string
}

func (f *fakeClassifier) Classify(ctx context.Context, imageData []byte, mimeType string) models.ClassificationResult {
	f.called = true
	f.data = imageData
	f.mime = mimeType
	return f.result
}

type fakeGeocoder struct {
	result *models.GeocodeResult
	err    error
	called bool
}

func (f *fakeGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.GeocodeResult, error) {
	f.called = true
	return f.result, f.err
}

func newRouter(h *Handlers, actor string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v3")
	api.POST("/reports", h.CreateReport)
	api.GET("/reports/:reportId", h.GetReport)
	api.POST("/analyze-image", h.AnalyzeImage)
	api.POST("/reverse-geocode", h.ReverseGeocode)

	setActor := func(c *gin.Context) {
		if actor != "" {
			c.Set("user_id", actor)
		}
	}
	api.GET("/reports", setActor, h.ListReports)
	api.PATCH("/reports/id/:id/status", setActor, h.UpdateReportStatus)
	router.GET("/health", h.HealthCheck)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateReportSuccess(t *testing.T) {
	svc := &fakeReports{
		createFn: func(ctx context.Context, draft *models.ReportDraft) (*models.Report, error) {
			return &models.Report{ID: 1, ReportID: draft.ReportID, Status: models.StatusPending}, nil
		},
	}
	router := newRouter(New(svc, &fakeClassifier{}, &fakeGeocoder{}), "")

	body := `{"reportId":"ABC123","type":"NON_EMERGENCY","specificType":"Pothole","title":"t","description":"d"}`
	w := doJSON(t, router, http.MethodPost, "/api/v3/reports", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	// The stored report is echoed at the top level, not nested.
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	if resp["reportId"] != "ABC123" {
		t.Errorf("reportId = %v, want ABC123", resp["reportId"])
	}
	if resp["status"] != "PENDING" {
		t.Errorf("status = %v, want PENDING at top level", resp["status"])
	}
}

func TestCreateReportValidationError(t *testing.T) {
	svc := &fakeReports{
		createFn: func(ctx context.Context, draft *models.ReportDraft) (*models.Report, error) {
			return nil, &reports.ValidationError{Field: "type", Message: "required field is missing"}
		},
	}
	router := newRouter(New(svc, &fakeClassifier{}, &fakeGeocoder{}), "")

	w := doJSON(t, router, http.MethodPost, "/api/v3/reports", `{"reportId":"ABC123"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp struct {
		Field string `json:"field"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Field != "type" {
		t.Errorf("field = %q, want type", resp.Field)
	}
}

func TestGetReportByPublicID(t *testing.T) {
	svc := &fakeReports{
		trackFn: func(ctx context.Context, reportID string) (*models.Report, error) {
			if reportID == "KNOWN12345" {
				return &models.Report{ID: 7, ReportID: reportID, Status: models.StatusPending}, nil
			}
			return nil, reports.ErrNotFound
		},
	}
	router := newRouter(New(svc, &fakeClassifier{}, &fakeGeocoder{}), "")

	w := doJSON(t, router, http.MethodGet, "/api/v3/reports/KNOWN12345", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v3/reports/MISSING999", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListReportsPassesFilters(t *testing.T) {
	var gotStatus, gotType string
	svc := &fakeReports{
		listFn: func(ctx context.Context, statusFilter, typeFilter string) ([]models.Report, error) {
			gotStatus, gotType = statusFilter, typeFilter
			return nil, nil
		},
	}
	router := newRouter(New(svc, &fakeClassifier{}, &fakeGeocoder{}), "moderator-1")

	w := doJSON(t, router, http.MethodGet, "/api/v3/reports?status=PENDING&type=EMERGENCY", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotStatus != "PENDING" || gotType != "EMERGENCY" {
		t.Errorf("filters = (%q, %q)", gotStatus, gotType)
	}
	var resp struct {
		Reports []models.Report `json:"reports"`
		Count   int             `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reports == nil {
		t.Errorf("reports should serialize as an empty array, not null")
	}
}

func TestUpdateReportStatus(t *testing.T) {
	svc := &fakeReports{
		transitionFn: func(ctx context.Context, actor string, id int64, newStatus string) (*models.Report, error) {
			if actor == "" {
				return nil, reports.ErrUnauthorized
			}
			if id != 7 {
				return nil, reports.ErrNotFound
			}
			return &models.Report{ID: id, Status: models.ReportStatus(newStatus)}, nil
		},
	}

	// Authenticated, existing report.
	router := newRouter(New(svc, &fakeClassifier{}, &fakeGeocoder{}), "moderator-1")
	w := doJSON(t, router, http.MethodPatch, "/api/v3/reports/id/7/status", `{"status":"RESOLVED"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	// Unknown id.
	w = doJSON(t, router, http.MethodPatch, "/api/v3/reports/id/999/status", `{"status":"RESOLVED"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	// Non-numeric id.
	w = doJSON(t, router, http.MethodPatch, "/api/v3/reports/id/abc/status", `{"status":"RESOLVED"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	// Missing actor context (middleware bypassed or broken).
	bare := newRouter(New(svc, &fakeClassifier{}, &fakeGeocoder{}), "")
	w = doJSON(t, bare, http.MethodPatch, "/api/v3/reports/id/7/status", `{"status":"RESOLVED"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAnalyzeImageAlwaysReturnsResult(t *testing.T) {
	clf := &fakeClassifier{result: models.ClassificationResult{
		Title: "Pothole on 5th", Type: "Pothole", Description: "Deep pothole.", Success: true,
	}}
	router := newRouter(New(&fakeReports{}, clf, &fakeGeocoder{}), "")

	image := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake-png"))
	w := doJSON(t, router, http.MethodPost, "/api/v3/analyze-image", `{"image":"`+image+`"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !clf.called {
		t.Fatalf("classifier not invoked")
	}
	if clf.mime != "image/png" {
		t.Errorf("mime = %q, want image/png", clf.mime)
	}
	if string(clf.data) != "fake-png" {
		t.Errorf("payload not decoded")
	}

	var result models.ClassificationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success || result.Type != "Pothole" {
		t.Errorf("result = %+v", result)
	}
}

func TestAnalyzeImageDegradedStill200(t *testing.T) {
	clf := &fakeClassifier{result: models.ClassificationResult{}}
	router := newRouter(New(&fakeReports{}, clf, &fakeGeocoder{}), "")

	image := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("blurry"))
	w := doJSON(t, router, http.MethodPost, "/api/v3/analyze-image", `{"image":"`+image+`"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when classification degrades", w.Code)
	}
	var result models.ClassificationResult
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.Success {
		t.Errorf("expected success=false")
	}
}

func TestAnalyzeImageRejectsMalformedDataURI(t *testing.T) {
	clf := &fakeClassifier{}
	router := newRouter(New(&fakeReports{}, clf, &fakeGeocoder{}), "")

	textPayload := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hi"))
	for _, body := range []string{
		`{"image":"not-a-data-uri"}`,
		`{"image":"data:image/png;base64,###"}`,
		`{"image":""}`,
		`{"image":"` + textPayload + `"}`,
		`{"image":"data:;base64,aGk="}`,
	} {
		w := doJSON(t, router, http.MethodPost, "/api/v3/analyze-image", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400 for %s", w.Code, body)
		}
	}
	if clf.called {
		t.Errorf("classifier must not run on malformed input")
	}
}

func TestReverseGeocodeSuccess(t *testing.T) {
	geo := &fakeGeocoder{result: &models.GeocodeResult{DisplayName: "12 Main St", Lat: "12.9", Lon: "77.6"}}
	router := newRouter(New(&fakeReports{}, &fakeClassifier{}, geo), "")

	w := doJSON(t, router, http.MethodPost, "/api/v3/reverse-geocode", `{"latitude":12.9,"longitude":77.6}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var result models.GeocodeResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.DisplayName != "12 Main St" {
		t.Errorf("display_name = %q", result.DisplayName)
	}
}

func TestReverseGeocodeRejectsStringCoordinates(t *testing.T) {
	geo := &fakeGeocoder{}
	router := newRouter(New(&fakeReports{}, &fakeClassifier{}, geo), "")

	// String latitude is malformed input: 400 before any provider call.
	w := doJSON(t, router, http.MethodPost, "/api/v3/reverse-geocode", `{"latitude":"12.9","longitude":77.6}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	// Missing coordinates are malformed too.
	w = doJSON(t, router, http.MethodPost, "/api/v3/reverse-geocode", `{"latitude":12.9}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	if geo.called {
		t.Errorf("provider must not be called for malformed input")
	}
}

func TestReverseGeocodeErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing key", geocode.ErrNoAPIKey, http.StatusInternalServerError},
		{"provider error", &geocode.ProviderError{Status: 429, Details: "rate limited"}, http.StatusBadGateway},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo := &fakeGeocoder{err: tt.err}
			router := newRouter(New(&fakeReports{}, &fakeClassifier{}, geo), "")

			w := doJSON(t, router, http.MethodPost, "/api/v3/reverse-geocode", `{"latitude":12.9,"longitude":77.6}`)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	router := newRouter(New(&fakeReports{}, &fakeClassifier{}, &fakeGeocoder{}), "")

	w := doJSON(t, router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
