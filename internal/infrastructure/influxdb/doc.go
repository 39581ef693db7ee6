// Package influxdb provides the telemetry sink for router counters.
//
// The monitor samples the routing core's atomic counters on a fixed
// cadence and writes the deltas here. Writes are non-blocking and
// batched by the InfluxDB client; a slow or absent server never touches
// the routing hot path.
//
// Measurements:
//
//	router_counters  tag counter={packets_sent,updates_routed,...}, field value
//	router_gauges    tag gauge={active_universes}, field value
package influxdb
