package streamings

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"streamlog-backend/lib/scrapers/nicolive"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/streamings")

type Service struct {
	store  Store
	client *nicolive.Client
}

func NewService(store Store, client *nicolive.Client) Service {
	return Service{
		store:  store,
		client: client,
	}
}

type IngestResult struct {
	StreamerID  int64
	StreamingID int64
	// Unavailable is set when the watch page returned a non-200 status
	// and only a placeholder row was stored.
	Unavailable bool
}

// Ingest fetches the watch page for a stream identifier, extracts the
// embedded broadcast metadata and persists it. A non-200 fetch stores a
// placeholder row and succeeds; every other failure aborts the run with
// a typed error and persists nothing. Ingest never retries, that is the
// caller's call.
func (s Service) Ingest(ctx context.Context, streamId string) (IngestResult, error) {
	ctx, span := tracer.Start(ctx, "Ingest")
	defer span.End()

	id, err := nicolive.CanonicalStreamID(streamId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return IngestResult{}, err
	}
	span.SetAttributes(attribute.String("stream_id", id))

	slog.InfoContext(ctx, "ingest start", "stream_id", id)

	page, err := s.client.FetchWatchPage(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return IngestResult{}, err
	}

	if page.StatusCode != http.StatusOK {
		slog.WarnContext(
			ctx, "watch page unavailable, storing placeholder",
			"stream_id", id,
			"status", page.StatusCode,
		)
		streamingId, err := s.store.SaveUnavailable(ctx, id, page.StatusCode)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return IngestResult{}, err
		}
		return IngestResult{
			StreamingID: streamingId,
			Unavailable: true,
		}, nil
	}

	raw, err := nicolive.ExtractEmbeddedPayload(page.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return IngestResult{}, fmt.Errorf("stream %s: %w", id, err)
	}
	payload, err := nicolive.DecodePayload(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return IngestResult{}, fmt.Errorf("stream %s: %w", id, err)
	}
	broadcast, err := nicolive.MapBroadcast(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return IngestResult{}, fmt.Errorf("stream %s: %w", id, err)
	}

	saved, err := s.store.Save(ctx, broadcast)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return IngestResult{}, err
	}

	slog.InfoContext(
		ctx, "ingest done",
		"stream_id", id,
		"streamer_id", saved.StreamerID,
		"streaming_id", saved.StreamingID,
		"host_type", broadcast.Streamer.HostType,
		"status", broadcast.Streaming.Status,
	)
	return IngestResult{
		StreamerID:  saved.StreamerID,
		StreamingID: saved.StreamingID,
	}, nil
}

type RangeResult struct {
	Ingested int
	Failed   int
}

// IngestRange ingests every identifier in [startId, endId] in order.
// Per-id failures are logged and counted, they do not abort the range.
func (s Service) IngestRange(ctx context.Context, startId, endId int64) (RangeResult, error) {
	ctx, span := tracer.Start(ctx, "IngestRange")
	defer span.End()

	if startId > endId {
		err := fmt.Errorf("start id %d is greater than end id %d", startId, endId)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RangeResult{}, err
	}

	var result RangeResult
	for id := startId; id <= endId; id++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		_, err := s.Ingest(ctx, strconv.FormatInt(id, 10))
		if err != nil {
			slog.ErrorContext(ctx, "ingest failed", "stream_id", id, "err", err)
			result.Failed++
			continue
		}
		result.Ingested++
	}

	return result, nil
}
