package adapter

import (
	"context"
	"fmt"
	"strings"
)

// fakeRunner answers canned output per command line, the way the incus
// pack fakes its API client for CLI tests.
type fakeRunner struct {
	responses map[string]CmdResult
	errs      map[string]error
	calls     []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		responses: make(map[string]CmdResult),
		errs:      make(map[string]error),
	}
}

func cmdKey(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func (f *fakeRunner) on(key string, res CmdResult) {
	f.responses[key] = res
}

func (f *fakeRunner) failWith(key string, err error) {
	f.errs[key] = err
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (CmdResult, error) {
	key := cmdKey(name, args...)
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return CmdResult{}, err
	}
	if res, ok := f.responses[key]; ok {
		return res, nil
	}
	return CmdResult{}, fmt.Errorf("unexpected command: %s", key)
}

func (f *fakeRunner) callCount(key string) int {
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}
