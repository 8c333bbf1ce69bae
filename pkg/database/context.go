package database

import "context"

type scopeKey struct{}

// GetOwnerScope retrieves the owner-scoped database connection from context.
// Returns nil and false if not present.
func GetOwnerScope(ctx context.Context) (*OwnerScope, bool) {
	scope, ok := ctx.Value(scopeKey{}).(*OwnerScope)
	return scope, ok
}

// SetOwnerScope stores the owner-scoped database connection in context.
func SetOwnerScope(ctx context.Context, scope *OwnerScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeTxRunner runs functions inside a transaction on the owner scope
// found in the context. It is the command router's transaction boundary.
type ScopeTxRunner struct{}

// RunInTx delegates to the context's OwnerScope.
func (ScopeTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	scope, ok := GetOwnerScope(ctx)
	if !ok {
		return ErrNoScope
	}
	return scope.RunInTx(ctx, fn)
}
