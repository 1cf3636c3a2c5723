// Package shutdown runs close hooks when the process is asked to stop.
//
// main cancels its root context on any of Signals so an in-flight request
// stops. The REPL registers what it opens (config
// watcher, history) and runs the hooks once when the loop ends:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	defer h.Shutdown()
//	h.OnClose(watcher.Stop)
//	h.OnClose(history.Save)
package shutdown
