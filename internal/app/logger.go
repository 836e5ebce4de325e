package app

import (
	"log/slog"
	"os"
	"strings"

	"shipment-console/internal/config"
	"shipment-console/internal/logx"
)

// NewLogger builds the service logger: slog JSON by default, zerolog on request.
func NewLogger(cfg *config.Config) logx.Logger {
	if strings.EqualFold(cfg.Log.Backend, "zerolog") {
		return logx.NewZerolog(logx.ZerologOptions{
			ServiceName: "shipment-console",
			Level:       cfg.Log.Level,
		})
	}
	base := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logx.ParseSlogLevel(cfg.Log.Level),
	}))
	return logx.NewSlogAdapter(base.With("service", "shipment-console"))
}
