// Package reports exports saved analyses as downloadable JSON documents.
package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OpenNSW/landedcost/internal/estimator"
	"github.com/OpenNSW/landedcost/internal/reports/storage"
	"github.com/OpenNSW/landedcost/internal/trade/model"
)

const (
	contentType = "application/json"
	keySuffix   = ".json"
)

// Report describes a stored report file.
type Report struct {
	Key         string    `json:"key"`
	AnalysisID  uuid.UUID `json:"analysisId"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Document is the content of a report file.
type Document struct {
	GeneratedAt time.Time             `json:"generatedAt"`
	Analysis    *model.Analysis       `json:"analysis"`
	Drawback    *model.DrawbackResult `json:"drawback,omitempty"`
}

// AnalysisSource loads analyses on behalf of a user.
type AnalysisSource interface {
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*model.Analysis, error)
	Drawback(ctx context.Context, userID string, id uuid.UUID) (*model.DrawbackResult, error)
}

type Service struct {
	store    storage.Store
	analyses AnalysisSource
	now      func() time.Time
}

func NewService(store storage.Store, analyses AnalysisSource) *Service {
	return &Service{store: store, analyses: analyses, now: time.Now}
}

// Generate writes a report for an analysis owned by userID.
func (s *Service) Generate(ctx context.Context, userID string, analysisID uuid.UUID) (*Report, error) {
	analysis, err := s.analyses.GetByID(ctx, userID, analysisID)
	if err != nil {
		return nil, err
	}
	drawback, err := s.analyses.Drawback(ctx, userID, analysisID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{GeneratedAt: now, Analysis: analysis, Drawback: drawback}); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	size := int64(buf.Len())

	key := reportKey(analysisID, uuid.New())
	if err := s.store.Put(ctx, key, &buf, contentType); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	url, err := s.store.URL(ctx, key, 0)
	if err != nil {
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			slog.WarnContext(ctx, "failed to clean up orphaned report", "key", key, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to build report URL: %w", err)
	}

	slog.InfoContext(ctx, "report generated", "analysisID", analysisID, "key", key, "size", size)
	return &Report{
		Key:         key,
		AnalysisID:  analysisID,
		URL:         url,
		Size:        size,
		ContentType: contentType,
		CreatedAt:   now,
	}, nil
}

// Open streams a report back after checking that userID owns its analysis.
func (s *Service) Open(ctx context.Context, userID, key string) (io.ReadCloser, string, error) {
	analysisID, err := analysisIDFromKey(key)
	if err != nil {
		return nil, "", err
	}
	if _, err := s.analyses.GetByID(ctx, userID, analysisID); err != nil {
		return nil, "", err
	}
	return s.store.Open(ctx, key)
}

// reportKey is {analysisID}_{reportID}.json.
func reportKey(analysisID, reportID uuid.UUID) string {
	return analysisID.String() + "_" + reportID.String() + keySuffix
}

func analysisIDFromKey(key string) (uuid.UUID, error) {
	name, ok := strings.CutSuffix(key, keySuffix)
	if !ok {
		return uuid.Nil, estimator.NewValidationError("key", "is not a report key")
	}
	rawAnalysis, rawReport, ok := strings.Cut(name, "_")
	if !ok {
		return uuid.Nil, estimator.NewValidationError("key", "is not a report key")
	}
	analysisID, err := uuid.Parse(rawAnalysis)
	if err != nil {
		return uuid.Nil, estimator.NewValidationError("key", "is not a report key")
	}
	if _, err := uuid.Parse(rawReport); err != nil {
		return uuid.Nil, estimator.NewValidationError("key", "is not a report key")
	}
	return analysisID, nil
}
