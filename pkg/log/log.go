// Package log encapsula o logrus com os campos que atravessam o autopilot:
// correlation_id por requisição ou ciclo e o conector em processamento.
package log

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Fields logrus.Fields

type Logger interface {
	WithField(key string, value any) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger
	WithContext(ctx context.Context) Logger

	Debug(args ...any)
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
}

type contextKey string

const (
	CorrelationIDKey contextKey = "correlation_id"
	connectorKey     contextKey = "connector"
)

const correlationIDField = "correlation_id"

// connectorScope é o conector cujo processamento originou o log
type connectorScope struct {
	id       string
	platform string
}

type logger struct {
	entry *logrus.Entry
}

// L é a instância global usada fora de requisições e ciclos
var L Logger = &logger{entry: logrus.NewEntry(logrus.StandardLogger())}

// IsDevelopment retorna verdadeiro quando APP_ENV não indica produção
func IsDevelopment() bool {
	env := os.Getenv("APP_ENV")
	return env == "" || env == "development" || env == "dev"
}

func (l *logger) WithField(key string, value any) Logger {
	// em desenvolvimento só os campos de rastreio do domínio aparecem
	if IsDevelopment() && !isRelevantField(key) {
		return l
	}
	return &logger{entry: l.entry.WithField(key, value)}
}

func (l *logger) WithFields(fields Fields) Logger {
	if !IsDevelopment() {
		return &logger{entry: l.entry.WithFields(logrus.Fields(fields))}
	}

	relevant := make(logrus.Fields, len(fields))
	for k, v := range fields {
		if isRelevantField(k) {
			relevant[k] = v
		}
	}
	if len(relevant) == 0 {
		return l
	}
	return &logger{entry: l.entry.WithFields(relevant)}
}

// isRelevantField lista o que sobrevive ao filtro de desenvolvimento
func isRelevantField(key string) bool {
	switch key {
	case correlationIDField, "method", "path", "status_code", "duration_ms", "error", "mode":
		return true
	}
	return strings.HasPrefix(key, "connector_") ||
		strings.HasPrefix(key, "proposal_") ||
		strings.HasPrefix(key, "operator_")
}

func (l *logger) WithError(err error) Logger {
	return &logger{entry: l.entry.WithError(err)}
}

// WithContext anexa o correlation_id e o conector guardados no contexto
func (l *logger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}

	fields := Fields{}
	if correlationID, ok := ctx.Value(CorrelationIDKey).(string); ok {
		fields[correlationIDField] = correlationID
	}
	if scope, ok := ctx.Value(connectorKey).(connectorScope); ok {
		fields["connector_id"] = scope.id
		fields["connector_platform"] = scope.platform
	}
	if len(fields) == 0 {
		return l
	}

	return l.WithFields(fields)
}

func (l *logger) Debug(args ...any)                 { l.entry.Debug(args...) }
func (l *logger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *logger) Info(args ...any)                  { l.entry.Info(args...) }
func (l *logger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *logger) Warn(args ...any)                  { l.entry.Warn(args...) }
func (l *logger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *logger) Error(args ...any)                 { l.entry.Error(args...) }
func (l *logger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

// WithCorrelationID gera um ID de correlação e o guarda no contexto
func WithCorrelationID(ctx context.Context) (context.Context, string) {
	correlationID := uuid.New().String()
	return context.WithValue(ctx, CorrelationIDKey, correlationID), correlationID
}

func GetCorrelationID(ctx context.Context) string {
	if correlationID, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return correlationID
	}
	return ""
}

// WithConnector marca o contexto com o conector em processamento; todo log
// derivado dele via ForContext carrega connector_id e connector_platform
func WithConnector(ctx context.Context, connectorID, platform string) context.Context {
	return context.WithValue(ctx, connectorKey, connectorScope{id: connectorID, platform: platform})
}

func ForContext(ctx context.Context) Logger {
	return L.WithContext(ctx)
}
