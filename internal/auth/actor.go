package auth

import "context"

// Actor is the already-authenticated caller. Authentication itself happens
// upstream; the engine only consumes the resolved identity and its grants.
type Actor struct {
	ID           int64    `json:"id"`
	TenantID     string   `json:"tenant_id"`
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

type actorCtxKey string

const contextActorKey actorCtxKey = "actor"

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	if ctx == nil {
		return nil, false
	}
	actor, ok := ctx.Value(contextActorKey).(*Actor)
	return actor, ok && actor != nil
}

func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, contextActorKey, actor)
}
