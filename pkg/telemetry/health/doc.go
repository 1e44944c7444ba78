// Package health provides liveness and readiness checking for Ganymede.
//
// The Checker aggregates named component checks (provider connectivity,
// cache store reachability, usage storage) for the /readyz endpoint;
// /healthz always reports the process alive. Checks run concurrently,
// each bounded by the checker's timeout, and any failing component
// degrades readiness to a 503 without affecting liveness.
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("providers", func(ctx context.Context) error {
//	    for id, ok := range orch.ValidateConnections(ctx) {
//	        if ok {
//	            return nil
//	        }
//	        _ = id
//	    }
//	    return errors.New("no provider reachable")
//	})
//	health.Register(mux, checker, version, commit, buildTime)
package health
