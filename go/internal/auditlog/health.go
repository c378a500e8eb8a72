package auditlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"
)

type HealthStatus struct {
	Healthy           bool
	PendingEvents     int
	DatabaseConnected bool
	NATSConnected     bool
	WorkerActive      bool
	Errors            []string
}

// HealthChecker reports on the audit relay pipeline: database, bus
// connection, worker liveness and backlog size.
type HealthChecker struct {
	worker   *Worker
	db       *sql.DB
	natsConn *nats.Conn
}

func NewHealthChecker(worker *Worker, db *sql.DB, natsConn *nats.Conn) *HealthChecker {
	return &HealthChecker{
		worker:   worker,
		db:       db,
		natsConn: natsConn,
	}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Errors:  []string{},
	}

	if err := h.db.PingContext(ctx); err != nil {
		status.DatabaseConnected = false
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
	} else {
		status.DatabaseConnected = true
	}

	if h.natsConn != nil {
		status.NATSConnected = h.natsConn.IsConnected()
		if !status.NATSConnected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	h.worker.mu.Lock()
	status.WorkerActive = h.worker.running
	h.worker.mu.Unlock()

	if !status.WorkerActive {
		status.Healthy = false
		status.Errors = append(status.Errors, "relay worker not active")
	}

	if status.DatabaseConnected {
		pending, err := h.countPendingEvents(ctx)
		if err != nil {
			status.Errors = append(status.Errors, fmt.Sprintf("failed to count pending events: %v", err))
		} else {
			status.PendingEvents = pending
			if pending > 1000 {
				status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: %d", pending))
			}
		}
	}

	return status
}

func (h *HealthChecker) countPendingEvents(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM logs WHERE published_at IS NULL`
	err := h.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	response := map[string]interface{}{
		"healthy":            status.Healthy,
		"pending_events":     status.PendingEvents,
		"database_connected": status.DatabaseConnected,
		"nats_connected":     status.NATSConnected,
		"worker_active":      status.WorkerActive,
		"errors":             status.Errors,
	}

	w.Header().Set("Content-Type", "application/json")

	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(response)
}
