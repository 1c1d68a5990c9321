package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/settings"
)

var _ settings.Logger = LogrusLogger{}

// LogrusLogger adapts a *logrus.Entry. An "err" field holding an error is
// attached with WithError.
type LogrusLogger struct{ E *logrus.Entry }

func (l LogrusLogger) Debug(msg string, f settings.Fields) { l.with(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f settings.Fields)  { l.with(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f settings.Fields)  { l.with(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f settings.Fields) { l.with(f).Error(msg) }

func (l LogrusLogger) with(f settings.Fields) *logrus.Entry {
	fields := make(logrus.Fields, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			fields[logrus.ErrorKey] = err
			continue
		}
		fields[k] = v
	}
	return l.E.WithFields(fields)
}
