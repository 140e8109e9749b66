package wire

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/semanticpay/shopagent/agentloop"
	"github.com/semanticpay/shopagent/internal/config"
)

type turnEventLogSink struct {
	logger    *slog.Logger
	logFormat config.LogFormat
}

func newTurnEventLogSink(logger *slog.Logger, logFormat config.LogFormat) agentloop.Sink {
	if logger == nil {
		return nil
	}
	if logFormat == "" {
		logFormat = config.LogFormatText
	}
	return turnEventLogSink{
		logger:    logger,
		logFormat: logFormat,
	}
}

func (s turnEventLogSink) Publish(ctx context.Context, event agentloop.TurnEvent) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if s.logFormat == config.LogFormatJSON {
		s.logger.Debug("turn event", slog.Any("event", event))
		return nil
	}

	eventPayload, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		return marshalErr
	}

	s.logger.Debug("turn event", slog.String("event", string(eventPayload)))
	return nil
}
