// Package connection implements the WebSocket client and the connection
// supervisor.
//
// The supervisor:
//   - Owns exactly one connection to the game at a time
//   - Decodes frames and dispatches events in strict arrival order
//   - Answers Engine.IO pings and keeps the session alive with its own
//   - Reconnects forever with capped exponential backoff and jitter
package connection
