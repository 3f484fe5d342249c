package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	unlocked bool

	calls []string
	args  []string
}

func (f *fakeExec) isUnlocked() bool { return f.unlocked }
func (f *fakeExec) Unlock(ctx context.Context) error {
	f.calls = append(f.calls, "unlock")
	f.unlocked = true
	return nil
}
func (f *fakeExec) Sync(ctx context.Context, shareID string) error {
	f.calls = append(f.calls, "sync")
	f.args = append(f.args, shareID)
	return nil
}
func (f *fakeExec) List(ctx context.Context, shareID string) error {
	f.calls = append(f.calls, "list")
	f.args = append(f.args, shareID)
	return nil
}
func (f *fakeExec) Show(ctx context.Context, shareID, itemID string) error {
	f.calls = append(f.calls, "show")
	f.args = append(f.args, shareID+"/"+itemID)
	return nil
}
func (f *fakeExec) AddLogin(ctx context.Context, shareID string) error {
	f.calls = append(f.calls, "addlogin")
	f.args = append(f.args, shareID)
	return nil
}
func (f *fakeExec) AddNote(ctx context.Context, shareID string) error {
	f.calls = append(f.calls, "addnote")
	f.args = append(f.args, shareID)
	return nil
}

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func TestRunREPL_UnlockFlowAndCommands(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"unlock",
		"sync s1",
		"list s1",
		"show s1 42",
		"addlogin s1",
		"addnote s1",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, bufio.NewScanner(input))

	assert.Equal(t, []string{"unlock", "sync", "list", "show", "addlogin", "addnote"}, exec.calls)
	assert.Equal(t, []string{"s1", "s1", "s1/42", "s1", "s1"}, exec.args)
}

func TestRunREPL_CommandsRequireUnlock(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"sync s1",
		"list s1",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, bufio.NewScanner(input))

	assert.Empty(t, exec.calls, "locked session must not dispatch commands")
}

func TestRunREPL_UsageErrors(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"unlock",
		"sync",
		"show s1",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, bufio.NewScanner(input))

	assert.Equal(t, []string{"unlock"}, exec.calls, "malformed commands must not dispatch")
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	silencePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, bufio.NewScanner(strings.NewReader("help\n")))

	assert.Empty(t, exec.calls)
}
