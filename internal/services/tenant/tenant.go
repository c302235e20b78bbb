// Package tenant maps an authenticated account onto its school. The
// lookup fails open: any storage problem degrades to "no tenant" so the
// caller always settles on a definite answer instead of an error state.
package tenant

import (
	"context"
	"errors"
	"log/slog"

	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/lib/strutil"
	"github.com/qalopay/school-payments/internal/models"
	"github.com/qalopay/school-payments/internal/storage/repository"
)

// SchoolRepository is the keyed read the resolver needs.
type SchoolRepository interface {
	// FindSchoolByOwner returns the newest school owned by the account.
	FindSchoolByOwner(ctx context.Context, ownerID string) (*models.School, error)
}

// Resolver resolves owner ids to school rows. No caching; every call
// re-queries.
type Resolver struct {
	repo SchoolRepository
	log  *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(repo SchoolRepository, log *slog.Logger) *Resolver {
	return &Resolver{
		repo: repo,
		log:  log,
	}
}

// ResolveSchool returns the school owned by ownerID, or nil. An empty
// owner id short-circuits without touching storage. Lookup failures are
// logged and reported as nil, never returned as errors.
func (r *Resolver) ResolveSchool(ctx context.Context, ownerID string) *models.School {
	if strutil.Safe(ownerID) == "" {
		return nil
	}

	school, err := r.repo.FindSchoolByOwner(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.log.Warn("school lookup failed, treating as no tenant",
				slog.String("owner_id", ownerID), sl.Err(err))
		}
		return nil
	}
	return school
}
