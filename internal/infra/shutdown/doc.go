// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT/SIGTERM, a fatal error reported by a
// background component, or an explicit Trigger, then runs the registered
// hooks in reverse registration order under a shared timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	err := h.Wait()
package shutdown
