package command

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/kvsh/internal/resp/resptest"
)

// newTestServer starts a server holding three keys, one of them the
// string greeting=hello.
func newTestServer(t *testing.T) *resptest.Server {
	t.Helper()
	ks := resptest.NewKeyspace()
	ks.Set("greeting", "hello")
	ks.HSet("user:1", "name", "alice")
	ks.RPush("queue", "job1", "job2")
	return resptest.NewServer(t, ks)
}

// lastCommand returns the most recent command srv received, joined with
// spaces.
func lastCommand(srv *resptest.Server) string {
	got := srv.Received()
	if len(got) == 0 {
		return ""
	}
	return strings.Join(got[len(got)-1], " ")
}

// isolate gives the test its own HOME and clears KVSH_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "KVSH_") {
			name, _, _ := strings.Cut(kv, "=")
			t.Setenv(name, "")
			_ = os.Unsetenv(name)
		}
	}
	return home
}

// runApp runs the application with stdin and returns stdout and stderr.
func runApp(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.RunContext(context.Background(), append([]string{"kvsh"}, args...))
	return stdout.String(), stderr.String(), err
}

// exitCode extracts the exit code from an app error.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	return -1
}
