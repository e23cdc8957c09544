package main

import (
	"context"

	"streamlog-backend/cmd/streamlog-cli/commands"
	"streamlog-backend/lib/serviceutil"
	"streamlog-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(true)
	err := telemetry.SetupFromEnv(ctx, "streamlog-cli")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer telemetry.Shutdown(context.Background())

	commands.ExecuteContext(ctx)
}
