// Package reqctx carries request-scoped values through context.Context:
// verified identity claims, request metadata, the resolved actor and the
// trace identifiers of the active span.
//
// Context keys are unexported so only this package can set or read them.
//
// Setting values (typically in middleware):
//
//	ctx = reqctx.WithClaims(ctx, claims)
//	ctx = reqctx.WithActor(ctx, actor)
//
// Reading them (handlers):
//
//	actor, ok := reqctx.ActorFromContext(ctx)
//
// Services never read this package; handlers pass the actor explicitly.
package reqctx
