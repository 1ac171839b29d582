package monitoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryConfig holds Sentry configuration options
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	Debug            bool
	SampleRate       float64
	TracesSampleRate float64
	ServiceName      string
	ServerName       string
}

var sensitiveKeys = []string{
	"password", "secret", "token", "authorization", "api_key", "apikey", "private_key", "cookie",
}

// InitSentry initializes Sentry. It reports false without error when no DSN
// is configured so callers can skip flushing.
func InitSentry(config *SentryConfig) (bool, error) {
	if config == nil || config.DSN == "" {
		return false, nil
	}

	environment := config.Environment
	if environment == "" {
		environment = "development"
	}
	release := config.Release
	if release == "" {
		release = "unknown"
	}

	sampleRate := config.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              config.DSN,
		Environment:      environment,
		Release:          release,
		Debug:            config.Debug,
		SampleRate:       sampleRate,
		TracesSampleRate: config.TracesSampleRate,
		ServerName:       config.ServerName,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if config.ServiceName != "" {
				if event.Tags == nil {
					event.Tags = map[string]string{}
				}
				event.Tags["service"] = config.ServiceName
			}
			FilterSensitiveData(event)
			return event
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to initialize Sentry: %w", err)
	}
	return true, nil
}

// FilterSensitiveData masks request headers whose names look like credentials.
func FilterSensitiveData(event *sentry.Event) {
	if event == nil || event.Request == nil {
		return
	}
	for key := range event.Request.Headers {
		if containsSensitiveKey(key) {
			event.Request.Headers[key] = "[FILTERED]"
		}
	}
}

func containsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range sensitiveKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// FlushSentry waits for buffered events to be delivered
func FlushSentry(timeout time.Duration) {
	sentry.Flush(timeout)
}

// CaptureError sends err to Sentry with optional tags and extra context.
func CaptureError(err error, tags map[string]string, extra map[string]interface{}) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		for k, v := range extra {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// CapturePanic reports a recovered panic value.
func CapturePanic(recovered interface{}, tags map[string]string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelFatal)
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CurrentHub().Recover(recovered)
	})
}
