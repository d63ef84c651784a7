// Package narodmonavg averages readings of public weather sensors near a
// location and publishes one Home Assistant state per sensor type.
//
// # Architecture
//
// The service is structured into several key packages:
//   - narodmon: client for the Narodmon appInit and sensorsNearby calls
//   - hass: Home Assistant REST state store
//   - aggregator: catalog resolution, averaging and publishing
//   - scheduler: startup run plus fixed-interval cycles
//   - grpc: narodmon.v1.Aggregator service with health and middleware
//   - httpapi: metrics, liveness, manual triggers and history over HTTP
//   - database: TimescaleDB and InfluxDB history sinks
//   - mqtt: retained MQTT mirror of every aggregate
//   - config: YAML, .env and APP_* environment configuration
//   - models: shared data structures
//
// Key Features
//
//   - One request per cycle:
//     every wanted type-id is sent to sensorsNearby in one call and the
//     response is split per type locally.
//
//   - Catalog cache:
//     the sensor-type catalog comes from appInit, is cached per language
//     for a day and falls back to a built-in table when Narodmon fails.
//
//   - Cleanup:
//     RemoveAll deletes every published entity, pausing between deletions.
//
// Example Usage
//
//	client := server.NewClient(conn)
//	report, err := client.Update(ctx, 0)
//
// For more information about specific packages, see their respective
// documentation.
package narodmonavg
