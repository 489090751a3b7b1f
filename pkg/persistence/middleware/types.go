package middleware

import "github.com/aretw0/espalier/pkg/ports"

// Middleware allows wrapping a SceneStore to add behavior.
type Middleware func(ports.SceneStore) ports.SceneStore

// Chain composes middlewares so the first listed is the outermost wrapper,
// matching the call order of chi's middleware chains.
func Chain(mws ...Middleware) Middleware {
	return func(next ports.SceneStore) ports.SceneStore {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
