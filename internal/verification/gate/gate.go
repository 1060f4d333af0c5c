// Package gate decides whether an entity may use downstream panels: only
// entities whose case is SUBMITTED or VERIFIED pass.
package gate

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
	"kycgate/pkg/platform/sentinel"
)

// StatusReader is implemented by the case stores.
type StatusReader interface {
	FindByEntity(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (*models.Case, error)
}

// StatusCache holds the latest known status per entity. Set overwrites and is
// used for write-through after a transition commits; Fill only populates an
// absent key so a slow store read cannot clobber a newer write-through.
type StatusCache interface {
	Get(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (models.Status, bool, error)
	Set(ctx context.Context, entityType models.EntityType, entityID domain.EntityID, status models.Status) error
	Fill(ctx context.Context, entityType models.EntityType, entityID domain.EntityID, status models.Status) error
}

// Observer receives every gate decision.
type Observer interface {
	ObserveGateCheck(entityType string, passed bool)
}

type Gate struct {
	cases    StatusReader
	cache    StatusCache
	observer Observer
	logger   *slog.Logger
	group    singleflight.Group
}

type Option func(*Gate)

func WithCache(cache StatusCache) Option {
	return func(g *Gate) {
		g.cache = cache
	}
}

func WithObserver(o Observer) Option {
	return func(g *Gate) {
		g.observer = o
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func New(cases StatusReader, opts ...Option) *Gate {
	g := &Gate{cases: cases, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CanPass reports whether the entity's latest status grants access.
// Unknown entities do not pass.
func (g *Gate) CanPass(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (bool, error) {
	status, err := g.Status(ctx, entityType, entityID)
	if err != nil {
		return false, err
	}
	passed := status.GrantsAccess()
	if g.observer != nil {
		g.observer.ObserveGateCheck(string(entityType), passed)
	}
	return passed, nil
}

// Status returns the entity's latest status, UNSUBMITTED when no case exists.
// Cache failures fall back to the store.
func (g *Gate) Status(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (models.Status, error) {
	if g.cache != nil {
		status, ok, err := g.cache.Get(ctx, entityType, entityID)
		if err != nil {
			g.logger.WarnContext(ctx, "gate cache read failed", "error", err, "entity_type", entityType)
		} else if ok {
			return status, nil
		}
	}

	// The shared load outlives any single caller; each caller still honours
	// its own cancellation.
	key := string(entityType) + ":" + string(entityID)
	ch := g.group.DoChan(key, func() (any, error) {
		return g.load(context.WithoutCancel(ctx), entityType, entityID)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(models.Status), nil
	}
}

func (g *Gate) load(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (models.Status, error) {
	status := models.StatusUnsubmitted
	c, err := g.cases.FindByEntity(ctx, entityType, entityID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
	case err != nil:
		return "", err
	default:
		status = c.Status
	}

	if g.cache != nil {
		if err := g.cache.Fill(ctx, entityType, entityID, status); err != nil {
			g.logger.WarnContext(ctx, "gate cache fill failed", "error", err, "entity_type", entityType)
		}
	}
	return status, nil
}

// Observe records a committed transition so the next check sees it.
func (g *Gate) Observe(ctx context.Context, entityType models.EntityType, entityID domain.EntityID, status models.Status) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Set(ctx, entityType, entityID, status); err != nil {
		g.logger.WarnContext(ctx, "gate cache write-through failed", "error", err, "entity_type", entityType)
	}
}
