// Package mqtt wraps the Eclipse Paho client for modulocore.
//
// It provides:
//   - Connection management with auto-reconnect and exponential backoff
//   - Subscription tracking with automatic restoration on reconnect
//     (broker-side subscriptions are not durable across reconnects)
//   - Last Will and Testament on modulocore/system/status
//   - Bounded timeouts on connect, publish and subscribe
//   - Panic recovery around message handlers
//   - Topic builders for the module fleet's topic hierarchy
//
// The field modules publish on fixed topic prefixes, some of them legacy
// Spanish names (apunte, estado); see topics.go for the full set.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllMeasurements(), 1, handleMessage)
package mqtt
