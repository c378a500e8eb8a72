package auditlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/fantaleague/fantamarket/go/internal/auditlog/db"
	"github.com/fantaleague/fantamarket/go/internal/sqlutil"
)

type Querier interface {
	FetchUnpublishedLogs(ctx context.Context, limit int32) ([]db.Log, error)
	InsertLog(ctx context.Context, arg db.InsertLogParams) error
	ListRecentLogs(ctx context.Context, limit int32) ([]db.Log, error)
	MarkLogsPublished(ctx context.Context, ids []uuid.UUID) error
}

type Repository struct {
	queries Querier
}

func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// Record appends an audit event. details is marshalled to JSON; a nil
// details records no payload. Callers inside a transaction bind the
// repository to that tx so the event commits with the state change.
func (r *Repository) Record(ctx context.Context, action string, details any, actorID *uuid.UUID) error {
	var raw pqtype.NullRawMessage
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
		raw = pqtype.NullRawMessage{RawMessage: payload, Valid: true}
	}

	if err := r.queries.InsertLog(ctx, db.InsertLogParams{
		ID:      uuid.New(),
		Action:  action,
		Details: raw,
		ActorID: sqlutil.ToNullUUID(actorID),
	}); err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// FetchUnpublished returns up to limit events not yet relayed to the bus,
// locking them against concurrent workers.
func (r *Repository) FetchUnpublished(ctx context.Context, limit int32) ([]Event, error) {
	rows, err := r.queries.FetchUnpublishedLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unpublished audit events: %w", err)
	}
	return dbLogsToEvents(rows), nil
}

// MarkPublished stamps the given events as relayed.
func (r *Repository) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.queries.MarkLogsPublished(ctx, ids); err != nil {
		return fmt.Errorf("failed to mark audit events published: %w", err)
	}
	return nil
}

// ListRecent returns the newest events for the admin log view.
func (r *Repository) ListRecent(ctx context.Context, limit int32) ([]Event, error) {
	rows, err := r.queries.ListRecentLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	return dbLogsToEvents(rows), nil
}

func dbLogsToEvents(rows []db.Log) []Event {
	events := make([]Event, len(rows))
	for i, row := range rows {
		events[i] = Event{
			ID:          row.ID,
			Action:      row.Action,
			ActorID:     sqlutil.FromNullUUID(row.ActorID),
			CreatedAt:   row.CreatedAt,
			PublishedAt: sqlutil.FromSqlTime(row.PublishedAt),
		}
		if row.Details.Valid {
			events[i].Details = row.Details.RawMessage
		}
	}
	return events
}
