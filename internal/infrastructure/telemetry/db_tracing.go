package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing attaches the otelgorm plugin so queries show up as child
// spans of the request trace. No-op when telemetry is disabled. Query
// variables are always excluded from spans; credentials live in the
// destinations table.
func RegisterDBTracing(db *gorm.DB, tp *TracerProvider, logger *zap.Logger) error {
	if !tp.IsEnabled() {
		logger.Debug("Telemetry disabled, skipping database tracing")
		return nil
	}

	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
		otelgorm.WithTracerProvider(tp.provider),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}

	logger.Info("Database tracing enabled")
	return nil
}
