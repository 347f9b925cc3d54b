package auth

import "context"

// Capability keys checked before gated lifecycle transitions.
const (
	CapabilityFinanceApprove = "finance.approve"
	CapabilityFinanceManage  = "finance.manage"
	CapabilityAdmin          = "admin"
)

// CapabilityChecker answers whether an actor may perform a named capability
// and whether a feature toggle is on. The production implementation lives in
// the hosted platform; the engine only consumes this interface.
type CapabilityChecker interface {
	HasCapability(ctx context.Context, actor *Actor, capability string) bool
	FeatureEnabled(ctx context.Context, feature string) bool
}

// StaticChecker resolves capabilities from the actor's own grant list.
// An admin grant implies everything.
type StaticChecker struct {
	EnabledFeatures map[string]bool
}

func NewStaticChecker() *StaticChecker {
	return &StaticChecker{EnabledFeatures: map[string]bool{}}
}

func (c *StaticChecker) HasCapability(_ context.Context, actor *Actor, capability string) bool {
	if actor == nil {
		return false
	}
	for _, grant := range actor.Capabilities {
		if grant == capability || grant == CapabilityAdmin {
			return true
		}
	}
	return false
}

func (c *StaticChecker) FeatureEnabled(_ context.Context, feature string) bool {
	return c.EnabledFeatures[feature]
}
