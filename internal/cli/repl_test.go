package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	loggedIn bool
	calls    []string
}

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) isLoggedIn() bool                     { return s.loggedIn }
func (s *stubExec) Register(ctx context.Context) error   { return s.record("register") }
func (s *stubExec) Verify(ctx context.Context) error     { return s.record("verify") }
func (s *stubExec) Login(ctx context.Context) error      { return s.record("login") }
func (s *stubExec) Logout(ctx context.Context) error     { return s.record("logout") }
func (s *stubExec) Show(ctx context.Context) error       { return s.record("show") }
func (s *stubExec) Update(ctx context.Context) error     { return s.record("update") }
func (s *stubExec) Export(ctx context.Context) error     { return s.record("export") }
func (s *stubExec) Delete(ctx context.Context) error     { return s.record("delete") }
func (s *stubExec) Status(ctx context.Context) error     { return s.record("status") }
func (s *stubExec) Purchases(ctx context.Context) error  { return s.record("purchases") }
func (s *stubExec) AddPurchase(ctx context.Context) error { return s.record("addpurchase") }

func runScript(t *testing.T, exec execIface, script string) string {
	t.Helper()
	var out bytes.Buffer
	scanner := bufio.NewScanner(strings.NewReader(script))
	runREPL(context.Background(), exec, func() string { return "" }, scanner, &out)
	return out.String()
}

func TestREPLDispatch(t *testing.T) {
	exec := &stubExec{}
	runScript(t, exec, "status\nlogin\nshow\npurchases\nexit\n")
	assert.Equal(t, []string{"status", "login", "show", "purchases"}, exec.calls)
}

func TestREPLUnknownCommand(t *testing.T) {
	exec := &stubExec{}
	out := runScript(t, exec, "frobnicate\nexit\n")
	assert.Contains(t, out, "Unknown command: frobnicate")
	assert.Empty(t, exec.calls)
}

func TestREPLHelpByLoginState(t *testing.T) {
	out := runScript(t, &stubExec{loggedIn: false}, "help\nexit\n")
	assert.Contains(t, out, "register")
	assert.NotContains(t, out, "addpurchase")

	out = runScript(t, &stubExec{loggedIn: true}, "help\nexit\n")
	assert.Contains(t, out, "addpurchase")
}

func TestREPLExitsOnEOF(t *testing.T) {
	exec := &stubExec{}
	out := runScript(t, exec, "status\n")
	assert.Contains(t, out, "Welcome to Vinylvault")
	assert.Equal(t, []string{"status"}, exec.calls)
}

func TestREPLIgnoresBlankLines(t *testing.T) {
	exec := &stubExec{}
	runScript(t, exec, "\n   \nstatus\nquit\n")
	assert.Equal(t, []string{"status"}, exec.calls)
}
