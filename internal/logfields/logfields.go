package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyProject    = "project"
	KeyVersion    = "version"
	KeyDocSlug    = "doc_slug"
	KeyRefreshID  = "refresh_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyDocCount   = "doc_count"
	KeyCacheKey   = "cache_key"
	KeyFile       = "file"
	KeyPath       = "path"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyRequestID  = "request_id"
	KeySubject    = "subject"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Project(p string) slog.Attr      { return slog.String(KeyProject, p) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func DocSlug(s string) slog.Attr      { return slog.String(KeyDocSlug, s) }
func RefreshID(id string) slog.Attr   { return slog.String(KeyRefreshID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func DocCount(n int) slog.Attr        { return slog.Int(KeyDocCount, n) }
func CacheKey(k string) slog.Attr     { return slog.String(KeyCacheKey, k) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr   { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func RequestID(id string) slog.Attr   { return slog.String(KeyRequestID, id) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
