package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID     = "build_id"
	KeyEnvironment = "environment"
	KeyMode        = "mode"
	KeyAdapter     = "adapter"
	KeyBasePath    = "base_path"
	KeyOutput      = "output"
	KeyRoute       = "route"
	KeyReferrer    = "referrer"
	KeyAnchor      = "anchor"
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeyPath        = "path"
	KeyError       = "error"
	KeyMethod      = "method"
	KeyStatus      = "status"
	KeyRequestID   = "request_id"
	KeyRemoteAddr  = "remote_addr"
)

func BuildID(id string) slog.Attr        { return slog.String(KeyBuildID, id) }
func Environment(env string) slog.Attr   { return slog.String(KeyEnvironment, env) }
func Mode(m string) slog.Attr            { return slog.String(KeyMode, m) }
func Adapter(kind string) slog.Attr      { return slog.String(KeyAdapter, kind) }
func BasePath(p string) slog.Attr        { return slog.String(KeyBasePath, p) }
func Output(dir string) slog.Attr        { return slog.String(KeyOutput, dir) }
func Route(r string) slog.Attr           { return slog.String(KeyRoute, r) }
func Referrer(r string) slog.Attr        { return slog.String(KeyReferrer, r) }
func Anchor(a string) slog.Attr          { return slog.String(KeyAnchor, a) }
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func Method(m string) slog.Attr          { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr          { return slog.Int(KeyStatus, code) }
func RequestID(id string) slog.Attr      { return slog.String(KeyRequestID, id) }
func RemoteAddr(addr string) slog.Attr   { return slog.String(KeyRemoteAddr, addr) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
