// Package monitor is the outward-facing side of the router: it samples
// the routing core's counters and event feed and reports them to MQTT
// and InfluxDB.
//
// The Reporter publishes a retained status snapshot (uptime, counters,
// active universes) on a fixed cadence plus error, snapshot-swap and
// lifecycle events as they arrive;
// the Flusher writes counter deltas to InfluxDB for dashboards. Both
// sinks are optional and best-effort; a down broker or database costs
// nothing on the routing hot path.
package monitor
