// Package protocol implements the Engine.IO/Socket.IO text frame codec.
//
// The game speaks Socket.IO over a raw WebSocket: every text message is an
// Engine.IO packet whose leading digit identifies the packet type (0 open,
// 2 ping, 3 pong, 4 message). A message packet carries a second digit for the
// Socket.IO packet type, so "42" is an event frame whose body is a JSON array
// of [eventName, args...].
//
// Conventions:
//   - Frame types: two-digit codes (40, 42, ...) for Socket.IO packets,
//     single digits for bare Engine.IO packets
//   - Payloads: decoded JSON values (json.Unmarshal into any)
//   - Binary attachments: counted from the "N-" prefix, never reassembled
package protocol
