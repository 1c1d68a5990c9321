package zap

import (
	"sort"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/settings"
)

var _ settings.Logger = ZapLogger{}

// ZapLogger adapts a *zap.Logger. An "err" field holding an error is
// logged with zap.Error so it lands under zap's error key.
type ZapLogger struct{ L *zap.Logger }

func (z ZapLogger) Debug(msg string, f settings.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f settings.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f settings.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f settings.Fields) { z.L.Error(msg, zf(f)...) }

// zf orders fields by key so repeated lines read the same.
func zf(f settings.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok && k == "err" {
			out = append(out, zap.Error(err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
