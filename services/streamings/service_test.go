package streamings

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"streamlog-backend/lib/scrapers/nicolive"
	"streamlog-backend/lib/testutil"
	"streamlog-backend/services/streamings/db"

	"github.com/stretchr/testify/require"
)

const communityProps = `{
	"program": {
		"nicoliveProgramId": "lv346883570",
		"title": "morning talk",
		"providerType": "community",
		"status": "ON_AIR",
		"beginTime": 1700000000,
		"supplier": {
			"programProviderId": "12345",
			"name": "alice",
			"pageUrl": "https://www.nicovideo.jp/user/12345"
		}
	},
	"socialGroup": {
		"id": "co555",
		"name": "alice's community"
	}
}`

func watchPage(props string) string {
	return fmt.Sprintf(
		`<!DOCTYPE html><html><body><script id="embedded-data" data-props="%s"></script></body></html>`,
		html.EscapeString(props),
	)
}

func setupService(t *testing.T, name string, handler http.HandlerFunc) (Service, Store, func()) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     name,
		DbSchema: db.Schema,
	})
	server := httptest.NewServer(handler)

	store := NewStore(res.DB)
	client := nicolive.NewClient(nicolive.ClientOptions{BaseUrl: server.URL})
	service := NewService(store, client)

	return service, store, func() {
		server.Close()
		cleanup()
	}
}

func TestIngestCommunity(t *testing.T) {
	service, store, cleanup := setupService(t, "streamings-ingest", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(watchPage(communityProps)))
	})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	res, err := service.Ingest(ctx, "346883570")
	require.NoError(t, err)
	require.False(t, res.Unavailable)
	require.NotZero(t, res.StreamerID)
	require.NotZero(t, res.StreamingID)

	var providerId, name string
	err = store.db.QueryRow("SELECT provider_id, name FROM streamers WHERE id = ?", res.StreamerID).Scan(&providerId, &name)
	require.NoError(t, err)
	require.Equal(t, "12345", providerId)
	require.Equal(t, "alice", name)

	var streamId, status string
	err = store.db.QueryRow("SELECT stream_id, status FROM streamings WHERE id = ?", res.StreamingID).Scan(&streamId, &status)
	require.NoError(t, err)
	require.Equal(t, "346883570", streamId)
	require.Equal(t, string(nicolive.StatusOnAir), status)
	require.NotEqual(t, string(nicolive.StatusUnknown), status)
}

func TestIngestNotFound(t *testing.T) {
	service, store, cleanup := setupService(t, "streamings-ingest-404", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	res, err := service.Ingest(ctx, "404404404")
	require.NoError(t, err)
	require.True(t, res.Unavailable)
	require.Zero(t, res.StreamerID)
	require.NotZero(t, res.StreamingID)

	require.Equal(t, 0, countRows(t, store, "streamers"))

	var streamId, status string
	var httpStatus int
	err = store.db.QueryRow(
		"SELECT stream_id, status, http_status FROM streamings WHERE id = ?",
		res.StreamingID,
	).Scan(&streamId, &status, &httpStatus)
	require.NoError(t, err)
	require.Equal(t, "404404404", streamId)
	require.Equal(t, string(nicolive.StatusUnknown), status)
	require.Equal(t, http.StatusNotFound, httpStatus)
}

func TestIngestMalformedPage(t *testing.T) {
	service, store, cleanup := setupService(t, "streamings-ingest-malformed", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>no embedded data here</body></html>`))
	})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	_, err := service.Ingest(ctx, "1")
	require.ErrorIs(t, err, nicolive.ErrMalformedPage)

	// a format failure persists nothing
	require.Equal(t, 0, countRows(t, store, "streamers"))
	require.Equal(t, 0, countRows(t, store, "streamings"))
}

func TestIngestUnknownHostType(t *testing.T) {
	props := `{"program":{"nicoliveProgramId":"lv1","title":"t","providerType":"mystery","status":"ENDED"}}`
	service, store, cleanup := setupService(t, "streamings-ingest-unknown-host", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(watchPage(props)))
	})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	_, err := service.Ingest(ctx, "1")
	var unknownHost *nicolive.UnknownHostTypeError
	require.ErrorAs(t, err, &unknownHost)
	require.Equal(t, 0, countRows(t, store, "streamings"))
}

func TestIngestInvalidIdentifier(t *testing.T) {
	service, _, cleanup := setupService(t, "streamings-ingest-invalid-id", func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should go out for an invalid identifier")
	})
	defer cleanup()

	_, err := service.Ingest(context.Background(), "not-an-id")
	require.ErrorIs(t, err, nicolive.ErrInvalidIdentifier)
}

func TestIngestTwiceIsIdempotent(t *testing.T) {
	service, store, cleanup := setupService(t, "streamings-ingest-idempotent", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(watchPage(communityProps)))
	})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	first, err := service.Ingest(ctx, "346883570")
	require.NoError(t, err)
	second, err := service.Ingest(ctx, "346883570")
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.Equal(t, 1, countRows(t, store, "streamers"))
	require.Equal(t, 1, countRows(t, store, "streamings"))
}

func TestIngestConcurrentSameStream(t *testing.T) {
	service, store, cleanup := setupService(t, "streamings-ingest-concurrent", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(watchPage(communityProps)))
	})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Ingest(ctx, "346883570")
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.Equal(t, 1, countRows(t, store, "streamers"))
	require.Equal(t, 1, countRows(t, store, "streamings"))

	// stored state matches one complete run, not an interleaving
	var name, title, status string
	err := store.db.QueryRow(
		`SELECT s.name, g.title, g.status
		 FROM streamings g JOIN streamers s ON s.id = g.streamer_id
		 WHERE g.stream_id = ?`,
		"346883570",
	).Scan(&name, &title, &status)
	require.NoError(t, err)
	require.Equal(t, "alice", name)
	require.Equal(t, "morning talk", title)
	require.Equal(t, string(nicolive.StatusOnAir), status)
}

func TestIngestRange(t *testing.T) {
	service, store, cleanup := setupService(t, "streamings-ingest-range", func(w http.ResponseWriter, r *http.Request) {
		// only lv2 exists in this range
		if r.URL.Path == "/watch/lv2" {
			props := `{
				"program": {
					"nicoliveProgramId": "lv2",
					"title": "the only one",
					"providerType": "community",
					"status": "ENDED",
					"beginTime": 1700000000,
					"endTime": 1700000100,
					"supplier": {"programProviderId": "77", "name": "bob"}
				}
			}`
			w.Write([]byte(watchPage(props)))
			return
		}
		http.NotFound(w, r)
	})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	res, err := service.IngestRange(ctx, 1, 3)
	require.NoError(t, err)
	require.Equal(t, 3, res.Ingested)
	require.Equal(t, 0, res.Failed)

	// lv1 and lv3 got placeholder rows, lv2 a full one
	require.Equal(t, 3, countRows(t, store, "streamings"))
	require.Equal(t, 1, countRows(t, store, "streamers"))

	_, err = service.IngestRange(ctx, 5, 4)
	require.Error(t, err)
}

func TestIngestRangeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	service, store, cleanup := setupService(t, "streamings-ingest-range-cancel", func(w http.ResponseWriter, r *http.Request) {
		// interrupt arrives after the first page
		cancel()
		w.Write([]byte(watchPage(communityProps)))
	})
	defer cleanup()

	res, err := service.IngestRange(ctx, 1, 100)
	require.ErrorIs(t, err, context.Canceled)
	// the range stops after the id that was in flight when the cancel hit
	require.Equal(t, 1, res.Ingested+res.Failed)
	require.LessOrEqual(t, countRows(t, store, "streamings"), 1)
}
