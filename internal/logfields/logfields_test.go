package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
// Key drift would break log ingestion schemas.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Route", KeyRoute, "/guide/", Route("/guide/")},
		{"Page", KeyPage, "01_intro.md", Page("01_intro.md")},
		{"Section", KeySection, "02_foundation", Section("02_foundation")},
		{"Stage", KeyStage, "render_pages", Stage("render_pages")},
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"JobID", KeyJobID, "j1", JobID("j1")},
		{"JobType", KeyJobType, "webhook", JobType("webhook")},
		{"Worker", KeyWorker, "worker-0", Worker("worker-0")},
		{"URL", KeyURL, "http://example", URL("http://example")},
		{"Name", KeyName, "n", Name("n")},
		{"Rule", KeyRule, "ordering-prefix", Rule("ordering-prefix")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestErrorAttr(t *testing.T) {
	if got := Error(nil).Value.String(); got != "" {
		t.Fatalf("nil error should produce empty value, got %q", got)
	}
	if got := Error(errors.New("boom")).Value.String(); got != "boom" {
		t.Fatalf("expected boom, got %q", got)
	}
}
