package devices

import (
	"context"
	"fmt"

	"github.com/PratikDhanave/device-info-service/internal/metrics"
	"github.com/PratikDhanave/device-info-service/internal/models"
)

// UserLookup reads the users collection.
type UserLookup interface {
	LatestUserEmailByIP(ctx context.Context, ip string) (email *string, found bool, err error)
}

// Resolver replaces the Unknown sentinel with the email of the latest user seen at the same IP.
type Resolver struct {
	users   UserLookup
	metrics *metrics.Metrics
}

// NewResolver returns a Resolver reading users and recording outcomes on m.
func NewResolver(users UserLookup, m *metrics.Metrics) *Resolver {
	return &Resolver{users: users, metrics: m}
}

// ResolveEmail returns candidate unchanged unless it is the Unknown sentinel.
// A matched user's email replaces the sentinel even when it is null.
// On a lookup error the sentinel is returned together with the error, so callers
// can log it and carry on.
func (r *Resolver) ResolveEmail(ctx context.Context, candidate *string, ip *string) (*string, error) {
	if !models.IsUnknownEmail(candidate) {
		return candidate, nil
	}
	if ip == nil {
		r.metrics.ObserveEnrichment(metrics.EnrichmentUnresolved)
		return candidate, nil
	}

	email, found, err := r.users.LatestUserEmailByIP(ctx, *ip)
	if err != nil {
		r.metrics.ObserveEnrichment(metrics.EnrichmentError)
		return candidate, fmt.Errorf("lookup user email by ip: %w", err)
	}
	if !found {
		r.metrics.ObserveEnrichment(metrics.EnrichmentUnresolved)
		return candidate, nil
	}

	r.metrics.ObserveEnrichment(metrics.EnrichmentResolved)
	return email, nil
}
