package observability

import (
	"io"

	"inventoryreservation/internal/config"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const instrumentationScopeName = "inventory-service.manual"

// NewLogger builds the service logger: JSON to out, teed into the OTel log bridge.
// The bridge forwards to whatever LoggerProvider is globally registered, a no-op until
// SetupLoggingSDK runs.
func NewLogger(out io.Writer) *zap.Logger {
	otelZapCore := otelzap.NewCore(instrumentationScopeName,
		otelzap.WithLoggerProvider(global.GetLoggerProvider()),
	)

	consoleEncoderConfig := zap.NewProductionEncoderConfig()
	consoleEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(consoleEncoderConfig),
		zapcore.Lock(zapcore.AddSync(out)),
		zap.InfoLevel,
	)

	return zap.New(zapcore.NewTee(otelZapCore, consoleCore),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service.name", config.ServiceName)),
	)
}
