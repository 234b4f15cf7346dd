// Package submission coordinates the multi-step report wizard: minting
// the public identifier, classifier and geocoder prefill, and the final
// hand-off to report creation. A session is short-lived and in-memory;
// nothing is persisted until Submit.
package submission

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/apex/log"

	"reportify/location"
	"reportify/models"
	"reportify/reportid"
)

// Classifier turns a photo into a prefill suggestion.
type Classifier interface {
	Classify(ctx context.Context, imageData []byte, mimeType string) models.ClassificationResult
}

// Locator produces a device position fix.
type Locator interface {
	Acquire(ctx context.Context) (location.Coordinates, error)
}

// Geocoder resolves coordinates to an address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*models.GeocodeResult, error)
}

// Creator persists a finished draft.
type Creator interface {
	Create(ctx context.Context, draft *models.ReportDraft) (*models.Report, error)
}

// Orchestrator wires the prefill collaborators into submission sessions.
type Orchestrator struct {
	classifier Classifier
	locator    Locator
	geocoder   Geocoder
	reports    Creator
}

// NewOrchestrator creates a submission orchestrator.
func NewOrchestrator(classifier Classifier, locator Locator, geocoder Geocoder, reports Creator) *Orchestrator {
	return &Orchestrator{
		classifier: classifier,
		locator:    locator,
		geocoder:   geocoder,
		reports:    reports,
	}
}

// Session is one in-flight submission. All mutators are safe for
// concurrent use so the prefill stages can run in parallel. An abandoned
// session is simply garbage collected; it has no persistence footprint.
type Session struct {
	o *Orchestrator

	mu    sync.Mutex
	draft models.ReportDraft
}

// Begin starts a session and mints the public report identifier.
func (o *Orchestrator) Begin() *Session {
	return &Session{
		o:     o,
		draft: models.ReportDraft{ReportID: reportid.New()},
	}
}

// Draft returns a snapshot of the assembled draft.
func (s *Session) Draft() models.ReportDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetType records the submitter's emergency classification.
func (s *Session) SetType(reportType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Type = reportType
}

// SetSpecificType overrides the issue category.
func (s *Session) SetSpecificType(specificType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.SpecificType = specificType
}

// SetTitle overrides the title.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Title = title
}

// SetDescription overrides the description.
func (s *Session) SetDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Description = description
}

// SetLocation overrides the human-readable address.
func (s *Session) SetLocation(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Location = address
}

// SetCoordinates overrides the position.
func (s *Session) SetCoordinates(lat, lon float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Latitude = lat
	s.draft.Longitude = lon
}

// AttachPhoto stores the photo on the draft and runs the classifier,
// prefilling only fields the submitter has not already set. Classification
// failure is not an error: the result just carries Success=false and the
// submitter fills the fields by hand.
func (s *Session) AttachPhoto(ctx context.Context, imageData []byte, mimeType string) models.ClassificationResult {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData))

	result := s.o.classifier.Classify(ctx, imageData, mimeType)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Image = dataURL
	if s.draft.Title == "" {
		s.draft.Title = result.Title
	}
	if s.draft.SpecificType == "" {
		s.draft.SpecificType = result.Type
	}
	if s.draft.Description == "" {
		s.draft.Description = result.Description
	}
	return result
}

// UseDeviceLocation acquires the device position and reverse-geocodes it,
// prefilling coordinates and address where the submitter has not already
// set them. A geocoder failure degrades to coordinates only; a location
// failure returns the error and the submitter enters the address manually.
func (s *Session) UseDeviceLocation(ctx context.Context) error {
	coords, err := s.o.locator.Acquire(ctx)
	if err != nil {
		return err
	}

	var address string
	result, err := s.o.geocoder.ReverseGeocode(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		log.WithError(err).Warnf("reverse geocoding failed, keeping coordinates only")
	} else {
		address = result.DisplayName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.Latitude == nil && s.draft.Longitude == nil {
		s.draft.Latitude = coords.Latitude
		s.draft.Longitude = coords.Longitude
	}
	if s.draft.Location == "" && address != "" {
		s.draft.Location = address
	}
	return nil
}

// Prefill runs the photo and location stages concurrently. The stages are
// independent; each locks the draft only to merge its outcome. A nil photo
// skips the classifier stage.
func (s *Session) Prefill(ctx context.Context, imageData []byte, mimeType string) models.ClassificationResult {
	var (
		wg     sync.WaitGroup
		result models.ClassificationResult
	)

	if len(imageData) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result = s.AttachPhoto(ctx, imageData, mimeType)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.UseDeviceLocation(ctx); err != nil {
			log.WithError(err).Warnf("location prefill failed, submitter enters address manually")
		}
	}()

	wg.Wait()
	return result
}

// Submit validates and persists the draft. This is the only operation in
// the session lifecycle that can fail the submission, and the only one
// with a persistence side effect.
func (s *Session) Submit(ctx context.Context) (*models.Report, error) {
	draft := s.Draft()
	return s.o.reports.Create(ctx, &draft)
}
