package http

import "log/slog"

func httpLogger() *slog.Logger {
	return slog.Default().With(
		"service", "onboarding",
		"module", "http",
		"layer", "adapter",
	)
}
