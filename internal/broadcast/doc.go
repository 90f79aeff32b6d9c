// Package broadcast fans price updates out to live WebSocket
// subscribers.
//
// The hub owns the subscriber set: connections register on upgrade and
// deregister on close or error, concurrently with in-flight broadcasts.
// Each subscriber has its own buffered send queue and writer goroutine,
// so one slow or broken connection never delays the others — a full
// queue drops that update for that subscriber only, and a write failure
// tears down only that connection.
package broadcast
