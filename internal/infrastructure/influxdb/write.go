package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteCounter records the per-interval delta of one router counter.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Example:
//
//	client.WriteCounter("packets_sent", 412)
//	client.WriteCounter("unmapped_entities", 3)
func (c *Client) WriteCounter(counter string, delta uint64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"router_counters",
		map[string]string{
			"counter": counter,
		},
		map[string]interface{}{
			"value": int64(delta),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteGauge records an instantaneous router gauge, such as the number
// of active universe buffers.
func (c *Client) WriteGauge(gauge string, value int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"router_gauges",
		map[string]string{
			"gauge": gauge,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
