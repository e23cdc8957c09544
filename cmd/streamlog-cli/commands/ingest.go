package commands

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"streamlog-backend/lib/configutil"
	"streamlog-backend/lib/scrapers/nicolive"
	"streamlog-backend/lib/serviceutil"
	"streamlog-backend/lib/sqliteutil"
	"streamlog-backend/services/streamings"
	streamingsdb "streamlog-backend/services/streamings/db"

	"github.com/spf13/cobra"
)

type Config struct {
	BaseUrl   string `json:"base_url"`
	UserAgent string `json:"user_agent"`
}

var ingestDb string

func init() {
	ingestCmd.Flags().StringVar(&ingestDb, "db", "streamlog.db", "The database to write ingest results to.")
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <start_id> [end_id] [--db <path/to/output.db>]",
	Short: "Fetches broadcast metadata for a stream id or id range and stores it.",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil && !os.IsNotExist(err) {
			serviceutil.Fatal("failed to read config", err)
		}

		database, err := sqliteutil.OpenDB(streamingsdb.Schema, ingestDb)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		client := nicolive.NewClient(nicolive.ClientOptions{
			BaseUrl:   cfg.BaseUrl,
			UserAgent: cfg.UserAgent,
		})
		service := streamings.NewService(streamings.NewStore(database), client)

		ctx := cmd.Context()

		if len(args) == 1 {
			res, err := service.Ingest(ctx, args[0])
			if err != nil {
				serviceutil.Fatal("ingest failed", err)
			}
			slog.Info(
				"ingest complete",
				"streamer_id", res.StreamerID,
				"streaming_id", res.StreamingID,
				"unavailable", res.Unavailable,
			)
			return
		}

		startId, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			serviceutil.Fatal("invalid start id", err)
		}
		endId, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			serviceutil.Fatal("invalid end id", err)
		}

		t1 := time.Now()
		res, err := service.IngestRange(ctx, startId, endId)
		if err != nil {
			serviceutil.Fatal("range ingest failed", err)
		}
		slog.Info(
			"range ingest complete",
			"ingested", res.Ingested,
			"failed", res.Failed,
			"seconds", time.Since(t1).Seconds(),
		)
	},
}
