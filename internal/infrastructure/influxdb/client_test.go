package influxdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/device-registrar/internal/infrastructure/config"
	"github.com/nerrad567/device-registrar/internal/infrastructure/influxdb"
)

// fakeInflux answers /ping and records line-protocol bodies posted to /api/v2/write.
type fakeInflux struct {
	mu      sync.Mutex
	writes  []string
	queries []string

	// writeStatus overrides the write response status when non-zero.
	writeStatus int
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ping":
		w.WriteHeader(http.StatusNoContent)
	case "/api/v2/write":
		body, _ := io.ReadAll(r.Body) //nolint:errcheck // test server
		f.mu.Lock()
		f.writes = append(f.writes, string(body))
		f.queries = append(f.queries, r.URL.RawQuery)
		status := f.writeStatus
		f.mu.Unlock()

		if status != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(`{"code":"internal error","message":"disk full"}`)) //nolint:errcheck // test server
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeInflux) recorded() ([]string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...), append([]string(nil), f.queries...)
}

// testConfig returns settings pointing at url.
func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled: true,
		URL:     url,
		Token:   "registrar-test-token",
		Org:     "lab",
		Bucket:  "registrar",
	}
}

func connectFake(t *testing.T) (*influxdb.Client, *fakeInflux) {
	t.Helper()

	fake := &fakeInflux{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := influxdb.Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() {
		client.Close() //nolint:errcheck // Test cleanup
	})

	return client, fake
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect(t *testing.T) {
	client, _ := connectFake(t)

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:8086")
	cfg.Enabled = false

	_, err := influxdb.Connect(context.Background(), cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := influxdb.Connect(ctx, testConfig("http://127.0.0.1:1"))
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestClose(t *testing.T) {
	client, _ := connectFake(t)

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close(), want false")
	}

	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() after Close() error = %v, want ErrNotConnected", err)
	}

	err := client.WriteOperation(context.Background(), influxdb.Operation{Action: "add"})
	if !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("WriteOperation() after Close() error = %v, want ErrNotConnected", err)
	}
}

func TestClose_Nil(t *testing.T) {
	client := &influxdb.Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v", err)
	}
}

// =============================================================================
// Write Tests
// =============================================================================

func TestWriteOperation(t *testing.T) {
	client, fake := connectFake(t)

	err := client.WriteOperation(context.Background(), influxdb.Operation{
		Action:    "status",
		Class:     "MotorCtrl",
		Instance:  "stage-a",
		Device:    "lab/motor/1",
		Outcome:   "success",
		Exported:  true,
		Timestamp: time.Unix(1760875200, 0),
	})
	if err != nil {
		t.Fatalf("WriteOperation() error = %v", err)
	}

	writes, queries := fake.recorded()
	if len(writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(writes))
	}

	line := strings.TrimSpace(writes[0])
	want := "registrar_operations,action=status,class=MotorCtrl,device=lab/motor/1,instance=stage-a,outcome=success exported=true 1760875200000000000"
	if line != want {
		t.Errorf("line = %q\nwant   %q", line, want)
	}

	if !strings.Contains(queries[0], "bucket=registrar") || !strings.Contains(queries[0], "org=lab") {
		t.Errorf("write query = %q, want org and bucket", queries[0])
	}
}

func TestWriteOperation_Failure(t *testing.T) {
	client, fake := connectFake(t)

	err := client.WriteOperation(context.Background(), influxdb.Operation{
		Action:   "add",
		Class:    "MotorCtrl",
		Instance: "stage-a",
		Device:   "lab/motor/1",
		Outcome:  "failure",
		Error:    "device: already exists",
	})
	if err != nil {
		t.Fatalf("WriteOperation() error = %v", err)
	}

	writes, _ := fake.recorded()
	if len(writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(writes))
	}
	if !strings.Contains(writes[0], `error="device: already exists"`) {
		t.Errorf("line %q lacks error field", writes[0])
	}
	if !strings.Contains(writes[0], "outcome=failure") {
		t.Errorf("line %q lacks failure outcome", writes[0])
	}
}

func TestWriteOperation_ServerError(t *testing.T) {
	client, fake := connectFake(t)
	fake.mu.Lock()
	fake.writeStatus = http.StatusInternalServerError
	fake.mu.Unlock()

	err := client.WriteOperation(context.Background(), influxdb.Operation{Action: "remove", Outcome: "success"})
	if !errors.Is(err, influxdb.ErrWriteFailed) {
		t.Errorf("WriteOperation() error = %v, want ErrWriteFailed", err)
	}
}

func TestWritePoint(t *testing.T) {
	client, fake := connectFake(t)

	err := client.WritePoint(context.Background(), "registrar_runs",
		map[string]string{"host": "ctl-01"},
		map[string]any{"count": 3},
		time.Time{},
	)
	if err != nil {
		t.Fatalf("WritePoint() error = %v", err)
	}

	writes, _ := fake.recorded()
	if len(writes) != 1 || !strings.HasPrefix(writes[0], "registrar_runs,host=ctl-01 count=3i ") {
		t.Errorf("writes = %q, want registrar_runs point", writes)
	}
}
