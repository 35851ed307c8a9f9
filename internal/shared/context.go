package shared

import "context"

// Role labels the kind of user performing an operation. Roles are informational.
type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleBranchAdmin Role = "BRANCH_ADMIN"
	RoleCashier     Role = "CASHIER"
	RoleMotorist    Role = "MOTORIST"
)

// Actor identifies who performs a mutating operation.
type Actor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	BranchID string `json:"branchId,omitempty"`
	Role     Role   `json:"role"`
}

// Label returns the display name recorded in audit trails.
func (a Actor) Label() string {
	if a.Name != "" {
		return a.Name
	}
	if a.ID != "" {
		return a.ID
	}
	return "system"
}

// SystemActor is used by background jobs and seeding.
var SystemActor = Actor{ID: "system", Name: "System", Role: RoleSuperAdmin}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
