package tools

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry enables error capture. Without a DSN capture calls are no-ops.
func InitSentry(dsn string, env string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
	})
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

func CaptureErrorWithExtra(err error, key string, value any) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetExtra(key, value)
		sentry.CaptureException(err)
	})
}
