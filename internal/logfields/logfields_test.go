package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Environment", KeyEnvironment, "local", Environment("local")},
		{"Mode", KeyMode, "development", Mode("development")},
		{"Adapter", KeyAdapter, "static", Adapter("static")},
		{"BasePath", KeyBasePath, "/personal-website", BasePath("/personal-website")},
		{"Output", KeyOutput, "build", Output("build")},
		{"Route", KeyRoute, "/about", Route("/about")},
		{"Referrer", KeyReferrer, "/", Referrer("/")},
		{"Anchor", KeyAnchor, "top", Anchor("top")},
		{"Stage", KeyStage, "package", Stage("package")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"RequestID", KeyRequestID, "abc-1", RequestID("abc-1")},
		{"RemoteAddr", KeyRemoteAddr, "127.0.0.1:5000", RemoteAddr("127.0.0.1:5000")},
		{"Error", KeyError, "boom", Error(errors.New("boom"))},
		{"NilError", KeyError, "", Error(nil)},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Fatalf("%s key mismatch: got %s want %s", c.name, c.attr.Key, c.attrKey)
		}
		if c.attr.Value.String() != c.attrVal {
			t.Fatalf("%s value mismatch: got %s want %s", c.name, c.attr.Value.String(), c.attrVal)
		}
	}
}

func TestDurationMS(t *testing.T) {
	a := DurationMS(12.5)
	if a.Key != KeyDurationMS || a.Value.Float64() != 12.5 {
		t.Fatalf("unexpected attr %v", a)
	}
}
