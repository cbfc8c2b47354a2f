package devices

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/PratikDhanave/device-info-service/internal/logging"
	"github.com/PratikDhanave/device-info-service/internal/metrics"
	"github.com/PratikDhanave/device-info-service/internal/models"
	"github.com/PratikDhanave/device-info-service/internal/reporting"
)

const DefaultEnrichConcurrency = 8

// Store is the persistence the service needs.
type Store interface {
	UserLookup
	InsertDeviceInfoIfAbsent(ctx context.Context, rec models.DeviceInfo) (inserted bool, err error)
	ListDeviceInfos(ctx context.Context) ([]models.DeviceInfo, error)
}

// Service ingests and lists device records.
type Service struct {
	store             Store
	resolver          *Resolver
	metrics           *metrics.Metrics
	enrichConcurrency int
	now               func() time.Time
	newID             func() string
}

// NewService returns a Service over st. A non-positive enrichConcurrency
// means DefaultEnrichConcurrency.
func NewService(st Store, m *metrics.Metrics, enrichConcurrency int) *Service {
	if enrichConcurrency <= 0 {
		enrichConcurrency = DefaultEnrichConcurrency
	}
	return &Service{
		store:             st,
		resolver:          NewResolver(st, m),
		metrics:           m,
		enrichConcurrency: enrichConcurrency,
		now:               time.Now,
		newID:             uuid.NewString,
	}
}

// Ingest stores the submission unless an identical tuple already exists.
// created is false for duplicates. Enrichment errors never fail the call.
func (s *Service) Ingest(ctx context.Context, in models.DeviceInfoInput) (bool, error) {
	email, err := s.resolver.ResolveEmail(ctx, in.Email, in.IPAddress)
	if err != nil {
		reporting.Report(ctx, err)
	}

	rec := models.DeviceInfo{
		ID:         s.newID(),
		Email:      email,
		Browser:    in.Browser,
		OS:         in.OS,
		DeviceType: in.DeviceType,
		IPAddress:  in.IPAddress,
		Timestamp:  s.now().UTC(),
	}

	created, err := s.store.InsertDeviceInfoIfAbsent(ctx, rec)
	if err != nil {
		s.metrics.ObserveSubmission(metrics.SubmissionError)
		return false, fmt.Errorf("insert device info: %w", err)
	}

	if created {
		s.metrics.ObserveSubmission(metrics.SubmissionCreated)
		logging.FromContext(ctx).Info("Saved device info", slog.String("id", rec.ID))
	} else {
		s.metrics.ObserveSubmission(metrics.SubmissionDuplicate)
	}
	return created, nil
}

// List returns every stored record in store order. Records still carrying the
// Unknown sentinel are re-resolved concurrently; only the returned copies change.
func (s *Service) List(ctx context.Context) ([]models.DeviceInfo, error) {
	infos, err := s.store.ListDeviceInfos(ctx)
	if err != nil {
		s.metrics.ObserveList(metrics.ListError)
		return nil, fmt.Errorf("list device infos: %w", err)
	}

	out := make([]models.DeviceInfo, len(infos))
	copy(out, infos)

	g := new(errgroup.Group)
	g.SetLimit(s.enrichConcurrency)
	for i := range out {
		if !models.IsUnknownEmail(out[i].Email) {
			continue
		}
		g.Go(func() error {
			email, err := s.resolver.ResolveEmail(ctx, out[i].Email, out[i].IPAddress)
			if err != nil {
				reporting.Report(ctx, err, map[string]string{"deviceInfoID": out[i].ID})
			}
			// Each goroutine owns out[i].
			out[i].Email = email
			return nil
		})
	}
	// Lookups degrade instead of failing, so Wait has nothing to return.
	_ = g.Wait()

	s.metrics.ObserveList(metrics.ListOK)
	return out, nil
}
