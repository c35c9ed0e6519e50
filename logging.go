package qrwlock

import "github.com/sirupsen/logrus"

// structuredLogger adapts logrus to the key/value calling convention
// used throughout this package (WarnLockHeld, holdGuard/waitGuard
// threshold warnings), mirroring the structured-field style the
// teacher's gin middleware builds around logrus.Fields
// (gauth-demo-app/web/backend/middleware/middleware.go's Logger).
type structuredLogger struct {
	entry *logrus.Logger
}

func newStructuredLogger() *structuredLogger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return &structuredLogger{entry: l}
}

func (s *structuredLogger) fields(kv []any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		f[key] = kv[i+1]
	}
	return f
}

func (s *structuredLogger) Warnw(msg string, kv ...any) {
	s.entry.WithFields(s.fields(kv)).Warn(msg)
}

func (s *structuredLogger) Infow(msg string, kv ...any) {
	s.entry.WithFields(s.fields(kv)).Info(msg)
}

// logger is the package-wide structured logger. Replace its underlying
// *logrus.Logger via SetLogger to route qrwlock's diagnostics (long
// wait/hold warnings, lock-held-across-boundary warnings) into an
// application's existing logging setup.
var logger = newStructuredLogger()

// SetLogger replaces the *logrus.Logger qrwlock logs through.
func SetLogger(l *logrus.Logger) {
	logger = &structuredLogger{entry: l}
}
