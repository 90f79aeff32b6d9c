// Package bus is the boundary to the durable message bus (Kafka).
//
// The producer side publishes price batches keyed by coin ID, so all
// events for one coin land on the same partition and stay totally
// ordered relative to each other. The consumer side fetches messages
// one at a time and commits an offset only after the message has been
// handled, preserving per-partition delivery order end to end.
//
// Publish errors are classified by kind (IsRetriable), never by
// matching error message text.
package bus
