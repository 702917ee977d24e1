package kafka

import (
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/bft-labs/framebridge/pkg/log"
)

// kgoLogger routes franz-go client logs into the bridge logger.
type kgoLogger struct {
	logger log.Logger
	level  kgo.LogLevel
}

func newKgoLogger(logger log.Logger, level kgo.LogLevel) *kgoLogger {
	return &kgoLogger{logger: logger, level: level}
}

func (l *kgoLogger) Level() kgo.LogLevel { return l.level }

func (l *kgoLogger) Log(level kgo.LogLevel, msg string, keyvals ...interface{}) {
	fields := make([]log.Field, 0, len(keyvals)/2+1)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fields = append(fields, log.Any(fmt.Sprint(keyvals[i]), keyvals[i+1]))
	}
	fields = append(fields, log.String("component", "kafka"))

	switch level {
	case kgo.LogLevelError:
		l.logger.Error(msg, fields...)
	case kgo.LogLevelWarn:
		l.logger.Warn(msg, fields...)
	case kgo.LogLevelInfo:
		l.logger.Info(msg, fields...)
	default:
		l.logger.Debug(msg, fields...)
	}
}
