// Package shutdown runs cleanup hooks exactly once, whether the shell
// exits normally or is terminated by a signal.
//
// Usage:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown(saveHistory)
//	stop := h.Watch(func(sig os.Signal) { os.Exit(1) })
//	defer stop()
//	...
//	_ = h.Shutdown()
package shutdown
