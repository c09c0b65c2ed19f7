// Package cli provides the interactive portal client.
//
// It wires configuration, the warm-start cache, the websocket transport and
// the portal service, then runs a line-oriented REPL over stdin. Every command
// is an intent: it is applied to the local mirror first and then sent to the
// server, so the view stays usable while offline.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// a termination signal arrives.
package cli
