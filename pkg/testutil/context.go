package testutil

import (
	"context"
	"net/http"

	"kycgate/pkg/domain"
	"kycgate/pkg/requestcontext"
)

// WithActor adds an actor and role to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// Invalid actor IDs are silently ignored.
func WithActor(req *http.Request, actorID string, role domain.Role) *http.Request {
	actor, err := domain.ParseActorID(actorID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithActor(req.Context(), actor, role))
}

// AsOwner is WithActor for the owner role.
func AsOwner(req *http.Request, actorID string) *http.Request {
	return WithActor(req, actorID, domain.RoleOwner)
}

// AsReviewer is WithActor for the reviewer role.
func AsReviewer(req *http.Request, actorID string) *http.Request {
	return WithActor(req, actorID, domain.RoleReviewer)
}

// OwnerContext returns a background context carrying an owner actor.
func OwnerContext(actorID string) context.Context {
	return requestcontext.WithActor(context.Background(), domain.ActorID(actorID), domain.RoleOwner)
}

// ReviewerContext returns a background context carrying a reviewer actor.
func ReviewerContext(actorID string) context.Context {
	return requestcontext.WithActor(context.Background(), domain.ActorID(actorID), domain.RoleReviewer)
}
