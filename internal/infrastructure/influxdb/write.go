package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteMeasurement mirrors a module's temperature/pressure reading.
//
// Either field pointer may be nil when the module reported only one value.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - moduleID: The reporting module
//   - temperature: Degrees Celsius, nil if not reported
//   - pressure: Hectopascals, nil if not reported
//   - recordedAt: Receipt timestamp of the reading
func (c *Client) WriteMeasurement(moduleID int64, temperature, pressure *float64, recordedAt time.Time) {
	if !c.IsConnected() {
		return
	}

	fields := make(map[string]interface{}, 2)
	if temperature != nil {
		fields["temperature"] = *temperature
	}
	if pressure != nil {
		fields["pressure"] = *pressure
	}
	if len(fields) == 0 {
		return
	}

	point := write.NewPoint(
		"module_measurements",
		map[string]string{
			"module_id": strconv.FormatInt(moduleID, 10),
		},
		fields,
		recordedAt,
	)

	c.writeAPI.WritePoint(point)
}

// WriteBeamPosition mirrors a module's accepted beam position pair.
func (c *Client) WriteBeamPosition(moduleID int64, up, down float64, recordedAt time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"beam_positions",
		map[string]string{
			"module_id": strconv.FormatInt(moduleID, 10),
		},
		map[string]interface{}{
			"up":   up,
			"down": down,
		},
		recordedAt,
	)

	c.writeAPI.WritePoint(point)
}

// WriteModuleHealth mirrors heartbeat health metrics.
//
// Only metrics present in the heartbeat payload are written; the fields
// map is built by the caller from the optional payload fields.
//
// Example:
//
//	client.WriteModuleHealth(7, map[string]interface{}{
//	    "free_memory":     28672,
//	    "internal_temp":   41.5,
//	    "signal_strength": -67,
//	})
func (c *Client) WriteModuleHealth(moduleID int64, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}
	if len(fields) == 0 {
		return
	}

	point := write.NewPoint(
		"module_health",
		map[string]string{
			"module_id": strconv.FormatInt(moduleID, 10),
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
