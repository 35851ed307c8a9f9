package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/omnimarket/omnimarket/internal/platform/httpx"
	"github.com/omnimarket/omnimarket/internal/shared"
)

// Actor headers. They only label audit records; nothing is authorised on them.
const (
	HeaderActorID     = "X-Actor-Id"
	HeaderActorName   = "X-Actor-Name"
	HeaderActorBranch = "X-Actor-Branch"
	HeaderActorRole   = "X-Actor-Role"
)

// ActorMiddleware stores the actor described by the X-Actor-* headers in the
// request context.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := shared.Actor{
			ID:       strings.TrimSpace(r.Header.Get(HeaderActorID)),
			Name:     strings.TrimSpace(r.Header.Get(HeaderActorName)),
			BranchID: strings.TrimSpace(r.Header.Get(HeaderActorBranch)),
			Role:     shared.Role(strings.ToUpper(strings.TrimSpace(r.Header.Get(HeaderActorRole)))),
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}

func actorFrom(r *http.Request) shared.Actor {
	actor, _ := shared.ActorFromContext(r.Context())
	return actor
}

func badRequest(detail string) error {
	return fmt.Errorf("%w: %s", httpx.ErrBadRequest, detail)
}
