// Package mqtt provides the MQTT publisher for Lumen Route's status and
// event feed.
//
// The router itself consumes no MQTT input; the eHuB UDP feed is the
// only data source. This client exists for the outward-facing side:
// the monitor publishes periodic status snapshots and router events so
// operator tooling can watch a show without attaching to the process.
//
// # Topics
//
//	lumenroute/status        periodic health/counters snapshot (retained)
//	lumenroute/event/{kind}  router events (decode errors, send errors, ...)
//
// # Connection handling
//
// The client connects with auto-reconnect and exponential backoff, and
// registers a Last Will so a crash flips the retained status topic to
// "offline". Publishing while disconnected returns ErrNotConnected; the
// monitor drops the report rather than queueing it.
package mqtt
