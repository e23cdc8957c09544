package streamings

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"streamlog-backend/lib/scrapers/nicolive"

	"go.opentelemetry.io/otel/codes"
)

// title recorded on the placeholder row when a watch page could not be
// fetched
const unknownTitle = "unknown"

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

type SaveResult struct {
	StreamerID  int64
	StreamingID int64
}

// Save upserts the streamer and streaming rows in a single
// transaction: both land or neither does. Rows are keyed by their
// external identifiers, so re-saving the same broadcast updates in
// place instead of duplicating.
func (s Store) Save(ctx context.Context, broadcast nicolive.Broadcast) (SaveResult, error) {
	ctx, span := tracer.Start(ctx, "store:Save")
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SaveResult{}, err
	}
	defer tx.Rollback()

	streamerId, err := upsertStreamer(ctx, tx, broadcast.Streamer)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SaveResult{}, err
	}

	streamingId, err := upsertStreaming(ctx, tx, broadcast.Streaming, &streamerId, http.StatusOK)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SaveResult{}, err
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SaveResult{}, err
	}

	return SaveResult{
		StreamerID:  streamerId,
		StreamingID: streamingId,
	}, nil
}

// SaveUnavailable records a placeholder streaming row for a watch page
// that did not return 200. Only the stream identifier and the observed
// status code are known; no streamer row is written.
func (s Store) SaveUnavailable(ctx context.Context, streamId string, httpStatus int) (int64, error) {
	ctx, span := tracer.Start(ctx, "store:SaveUnavailable")
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	defer tx.Rollback()

	streamingId, err := upsertStreaming(ctx, tx, nicolive.Streaming{
		StreamID: streamId,
		Title:    unknownTitle,
		Status:   nicolive.StatusUnknown,
	}, nil, httpStatus)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	return streamingId, nil
}

const upsertStreamerQuery = `
INSERT INTO streamers (provider_id, name, profile_url, company_name, host_type, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (provider_id) DO UPDATE SET
    name = excluded.name,
    profile_url = excluded.profile_url,
    company_name = excluded.company_name,
    host_type = excluded.host_type,
    updated_at = excluded.updated_at
`

func upsertStreamer(ctx context.Context, tx *sql.Tx, streamer nicolive.Streamer) (int64, error) {
	now := time.Now().Unix()
	_, err := tx.ExecContext(
		ctx, upsertStreamerQuery,
		streamer.ProviderID,
		streamer.Name,
		streamer.ProfileURL,
		streamer.CompanyName,
		string(streamer.HostType),
		now, now,
	)
	if err != nil {
		return 0, err
	}

	var id int64
	err = tx.QueryRowContext(
		ctx,
		`SELECT id FROM streamers WHERE provider_id = ?`,
		streamer.ProviderID,
	).Scan(&id)
	return id, err
}

const upsertStreamingQuery = `
INSERT INTO streamings (stream_id, title, begin_time, end_time, duration_seconds, status, http_status, streamer_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (stream_id) DO UPDATE SET
    title = excluded.title,
    begin_time = excluded.begin_time,
    end_time = excluded.end_time,
    duration_seconds = excluded.duration_seconds,
    status = excluded.status,
    http_status = excluded.http_status,
    streamer_id = excluded.streamer_id,
    updated_at = excluded.updated_at
`

func upsertStreaming(ctx context.Context, tx *sql.Tx, streaming nicolive.Streaming, streamerId *int64, httpStatus int) (int64, error) {
	var begin, end, duration, streamer sql.NullInt64
	if streaming.BeginTime != nil {
		begin = sql.NullInt64{Int64: streaming.BeginTime.Unix(), Valid: true}
	}
	if streaming.EndTime != nil {
		end = sql.NullInt64{Int64: streaming.EndTime.Unix(), Valid: true}
	}
	if begin.Valid && end.Valid {
		duration = sql.NullInt64{Int64: end.Int64 - begin.Int64, Valid: true}
	}
	if streamerId != nil {
		streamer = sql.NullInt64{Int64: *streamerId, Valid: true}
	}

	now := time.Now().Unix()
	_, err := tx.ExecContext(
		ctx, upsertStreamingQuery,
		streaming.StreamID,
		streaming.Title,
		begin, end, duration,
		string(streaming.Status),
		httpStatus,
		streamer,
		now, now,
	)
	if err != nil {
		return 0, err
	}

	var id int64
	err = tx.QueryRowContext(
		ctx,
		`SELECT id FROM streamings WHERE stream_id = ?`,
		streaming.StreamID,
	).Scan(&id)
	return id, err
}
