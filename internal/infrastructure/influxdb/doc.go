// Package influxdb records registrar operations in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, point writing and health checks.
//
// # Purpose
//
// Every registrar action (add, remove, unexport, status) is written as one
// point of the measurement "registrar_operations":
//
//	tags:   action, class, instance, device, outcome
//	fields: exported (bool), error (string, failures only)
//
// This gives an audit trail of who registered what and when, and of the export
// state observed by status queries.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.WriteOperation(ctx, influxdb.Operation{Action: "add", ...})
//
// # Error Handling
//
// Writes are blocking, so failures are returned to the caller directly. The
// registrar treats them as warnings.
package influxdb
