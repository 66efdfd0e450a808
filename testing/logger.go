package testing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/arloliu/rotacl/types"
)

// NewTestLogger returns a types.Logger that writes through t.Logf, so log
// output of controllers, locks and stores shows up under the failing test.
//
// Key-value pairs are rendered as key=value. Fatal fails the test instead of
// exiting the process.
//
// Example:
//
//	ctrl, err := rotacl.NewController(ctx, &cfg, src, st, locker,
//	    rotacl.WithLogger(rotacltest.NewTestLogger(t)))
func NewTestLogger(t testing.TB) types.Logger {
	return &testLogger{t: t}
}

type testLogger struct {
	t testing.TB
}

var _ types.Logger = (*testLogger)(nil)

func (l *testLogger) Debug(msg string, keysAndValues ...any) { l.log("DEBUG", msg, keysAndValues) }
func (l *testLogger) Info(msg string, keysAndValues ...any) { l.log("INFO", msg, keysAndValues) }
func (l *testLogger) Warn(msg string, keysAndValues ...any) { l.log("WARN", msg, keysAndValues) }
func (l *testLogger) Error(msg string, keysAndValues ...any) { l.log("ERROR", msg, keysAndValues) }

func (l *testLogger) Fatal(msg string, keysAndValues ...any) {
	l.t.Helper()
	l.t.Fatalf("FATAL %s%s", msg, formatPairs(keysAndValues))
}

func (l *testLogger) log(level, msg string, keysAndValues []any) {
	l.t.Helper()
	l.t.Logf("%s %s%s", level, msg, formatPairs(keysAndValues))
}

// formatPairs renders key-value pairs as " k1=v1 k2=v2". A trailing key
// without value is rendered as "k=<missing>".
func formatPairs(keysAndValues []any) string {
	var b strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		var value any = "<missing>"
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}
		fmt.Fprintf(&b, " %v=%v", keysAndValues[i], value)
	}

	return b.String()
}
