package influxdb

import (
	"context"
	"fmt"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementOperations is the measurement registrar actions are written to.
const MeasurementOperations = "registrar_operations"

// Operation is one registrar action as stored in InfluxDB.
type Operation struct {
	Action   string
	Class    string
	Instance string
	Device   string

	// Outcome is "success" or "failure".
	Outcome string

	Exported bool

	// Error is written as a field only when non-empty.
	Error string

	// Timestamp defaults to now when zero.
	Timestamp time.Time
}

// WriteOperation writes one operation point.
//
// Example:
//
//	err := client.WriteOperation(ctx, influxdb.Operation{
//	    Action: "status", Class: "MotorCtrl", Instance: "stage-a",
//	    Device: "lab/motor/1", Outcome: "success", Exported: true,
//	})
func (c *Client) WriteOperation(ctx context.Context, op Operation) error {
	return c.WritePoint(ctx, MeasurementOperations, operationTags(op), operationFields(op), op.Timestamp)
}

// WritePoint writes a custom point. A zero timestamp means now.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//   - timestamp: The time of the point
func (c *Client) WritePoint(ctx context.Context, measurement string, tags map[string]string, fields map[string]any, timestamp time.Time) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	if err := c.writeAPI.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

func operationTags(op Operation) map[string]string {
	return map[string]string{
		"action":   op.Action,
		"class":    op.Class,
		"instance": op.Instance,
		"device":   op.Device,
		"outcome":  op.Outcome,
	}
}

func operationFields(op Operation) map[string]any {
	fields := map[string]any{
		"exported": op.Exported,
	}
	if op.Error != "" {
		fields["error"] = op.Error
	}
	return fields
}
