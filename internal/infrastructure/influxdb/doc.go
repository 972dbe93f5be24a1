// Package influxdb mirrors module telemetry into an InfluxDB v2 bucket.
//
// SQLite remains the system of record; this mirror feeds time-series
// dashboards. Writes are batched and non-blocking, and the mirror is
// optional: when disabled in config the call sites hold a nil *Client,
// which reports disconnected and drops writes silently.
//
// Usage:
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    client = nil // mirror off, everything else continues
//	} else if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteMeasurement(7, &temp, &press, time.Now())
package influxdb
