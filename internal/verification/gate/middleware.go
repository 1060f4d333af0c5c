package gate

import (
	"net/http"
	"strings"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
	"kycgate/pkg/platform/httputil"
)

// EntityResolver extracts the gated entity from a request.
type EntityResolver func(r *http.Request) (models.EntityType, domain.EntityID, bool)

type RedirectConfig struct {
	// SubmissionURL is where entities that have not passed are sent.
	SubmissionURL string
	// ExemptPrefixes are path prefixes served without a gate check.
	ExemptPrefixes []string
}

// RequirePassed lets requests through only when the resolved entity passes
// the gate; everything else is redirected (303) to the submission page.
func (g *Gate) RequirePassed(cfg RedirectConfig, resolve EntityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range cfg.ExemptPrefixes {
				if prefix != "" && strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			entityType, entityID, ok := resolve(r)
			if !ok {
				http.Redirect(w, r, cfg.SubmissionURL, http.StatusSeeOther)
				return
			}
			passed, err := g.CanPass(r.Context(), entityType, entityID)
			if err != nil {
				g.logger.ErrorContext(r.Context(), "gate check failed", "error", err, "entity_type", entityType)
				httputil.WriteError(w, err)
				return
			}
			if !passed {
				http.Redirect(w, r, cfg.SubmissionURL, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
