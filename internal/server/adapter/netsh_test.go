package adapter

import (
	"errors"
	"testing"

	"github.com/ghosthack3r/wintune/internal/shared/types"
	"go.uber.org/zap"
)

const showGlobalOutput = `
Querying active state...

TCP Global Parameters
----------------------------------------------
Receive-Side Scaling State          : enabled
Receive Window Auto-Tuning Level    : normal
Add-On Congestion Control Provider  : none
ECN Capability                      : disabled
RFC 1323 Timestamps                 : allowed
Initial RTO                         : 1000
`

const showSupplementalOutput = `
TCP Supplemental Parameters
----------------------------------------------

Template                    : internet
----------------------------------------------
Minimum RTO (msec)          : 300
Congestion Control Provider : ctcp

Template                    : datacenter
----------------------------------------------
Minimum RTO (msec)          : 20
Congestion Control Provider : dctcp

Effective settings
------------------
Congestion Control Provider : cubic
`

var (
	autotuningParam = types.Parameter{
		Key:          "autotuninglevel",
		Backend:      types.BackendNetshGlobal,
		Kind:         types.ValueEnum,
		NetshSetting: "autotuninglevel",
		NetshField:   "Receive Window Auto-Tuning Level",
	}
	congestionParam = types.Parameter{
		Key:          "congestionprovider",
		Backend:      types.BackendNetshSupplemental,
		Kind:         types.ValueEnum,
		NetshSetting: "congestionprovider",
		NetshField:   "Congestion Control Provider",
	}
)

func TestNetshGetGlobal(t *testing.T) {
	runner := newFakeRunner()
	runner.on(cmdKey("netsh", "interface", "tcp", "show", "global"), CmdResult{Output: showGlobalOutput})
	m := NewNetshManager(runner, zap.NewNop())

	v := m.Get(autotuningParam)
	if v.State != types.StatePresent {
		t.Fatalf("State = %s, want present (detail: %s)", v.State, v.Detail)
	}
	if v.Value != "normal" {
		t.Errorf("Value = %q, want %q", v.Value, "normal")
	}
}

func TestNetshGetCachesShowOutputPerPass(t *testing.T) {
	runner := newFakeRunner()
	showKey := cmdKey("netsh", "interface", "tcp", "show", "global")
	runner.on(showKey, CmdResult{Output: showGlobalOutput})
	m := NewNetshManager(runner, zap.NewNop())

	rssParam := autotuningParam
	rssParam.Key = "rss"
	rssParam.NetshField = "Receive-Side Scaling State"

	m.Get(autotuningParam)
	m.Get(rssParam)

	if got := runner.callCount(showKey); got != 1 {
		t.Errorf("show global invoked %d times in one pass, want 1", got)
	}

	m.Reset()
	m.Get(autotuningParam)
	if got := runner.callCount(showKey); got != 2 {
		t.Errorf("show global invoked %d times after Reset, want 2", got)
	}
}

func TestNetshGetSupplementalPrefersEffectiveBlock(t *testing.T) {
	runner := newFakeRunner()
	runner.on(cmdKey("netsh", "int", "tcp", "show", "supplemental"), CmdResult{Output: showSupplementalOutput})
	m := NewNetshManager(runner, zap.NewNop())

	v := m.Get(congestionParam)
	if v.State != types.StatePresent {
		t.Fatalf("State = %s, want present (detail: %s)", v.State, v.Detail)
	}
	if v.Value != "cubic" {
		t.Errorf("Value = %q, want %q (effective block wins over templates)", v.Value, "cubic")
	}
}

func TestNetshGetSupplementalFallsBackToInternetTemplate(t *testing.T) {
	noEffective := `
Template                    : internet
----------------------------------------------
Congestion Control Provider : ctcp

Template                    : datacenter
----------------------------------------------
Congestion Control Provider : dctcp
`
	runner := newFakeRunner()
	runner.on(cmdKey("netsh", "int", "tcp", "show", "supplemental"), CmdResult{Output: noEffective})
	m := NewNetshManager(runner, zap.NewNop())

	v := m.Get(congestionParam)
	if v.State != types.StatePresent || v.Value != "ctcp" {
		t.Errorf("got %s/%q, want present/ctcp from internet template", v.State, v.Value)
	}
}

func TestNetshGetFieldNotMatched(t *testing.T) {
	runner := newFakeRunner()
	runner.on(cmdKey("netsh", "interface", "tcp", "show", "global"), CmdResult{Output: "TCP Global Parameters\n"})
	m := NewNetshManager(runner, zap.NewNop())

	v := m.Get(autotuningParam)
	if v.State != types.StateQueryError {
		t.Errorf("State = %s, want query_error for unmatched field", v.State)
	}
}

func TestNetshGetRunnerFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.failWith(cmdKey("netsh", "interface", "tcp", "show", "global"), errors.New("command netsh timed out after 10s"))
	m := NewNetshManager(runner, zap.NewNop())

	v := m.Get(autotuningParam)
	if v.State != types.StateQueryError {
		t.Errorf("State = %s, want query_error on runner failure", v.State)
	}
}

func TestNetshSetSuccess(t *testing.T) {
	runner := newFakeRunner()
	runner.on(cmdKey("netsh", "interface", "tcp", "set", "global", "autotuninglevel=restricted"), CmdResult{Output: "Ok.\n"})
	m := NewNetshManager(runner, zap.NewNop())

	res := m.Set(autotuningParam, "restricted")
	if !res.OK {
		t.Errorf("Set should succeed, detail: %s", res.Detail)
	}
}

func TestNetshSetExitZeroWithErrorMarkerIsRejected(t *testing.T) {
	// netsh quirk: some failures exit 0 and only signal through the text
	runner := newFakeRunner()
	runner.on(cmdKey("netsh", "interface", "tcp", "set", "global", "autotuninglevel=bogus"),
		CmdResult{Output: "The parameter is incorrect: invalid parameter\n", ExitCode: 0})
	m := NewNetshManager(runner, zap.NewNop())

	res := m.Set(autotuningParam, "bogus")
	if res.OK {
		t.Error("Set must be classified as rejected when output carries an error marker, even at exit 0")
	}
}

func TestNetshSetNonzeroExit(t *testing.T) {
	runner := newFakeRunner()
	runner.on(cmdKey("netsh", "interface", "tcp", "set", "global", "autotuninglevel=normal"),
		CmdResult{Output: "", ExitCode: 1})
	m := NewNetshManager(runner, zap.NewNop())

	if res := m.Set(autotuningParam, "normal"); res.OK {
		t.Error("Set should fail on nonzero exit code")
	}
}

func TestNetshSetSupplementalUsesInternetTemplate(t *testing.T) {
	runner := newFakeRunner()
	key := cmdKey("netsh", "int", "tcp", "set", "supplemental", "template=internet", "congestionprovider=ctcp")
	runner.on(key, CmdResult{Output: "Ok.\n"})
	m := NewNetshManager(runner, zap.NewNop())

	res := m.Set(congestionParam, "ctcp")
	if !res.OK {
		t.Errorf("Set should succeed, detail: %s", res.Detail)
	}
	if runner.callCount(key) != 1 {
		t.Error("supplemental set must go through the internet template command")
	}
}

func TestNetshUnsetWritesDefaultToken(t *testing.T) {
	runner := newFakeRunner()
	key := cmdKey("netsh", "interface", "tcp", "set", "global", "autotuninglevel=default")
	runner.on(key, CmdResult{Output: "Ok.\n"})
	m := NewNetshManager(runner, zap.NewNop())

	res := m.Unset(autotuningParam)
	if !res.OK {
		t.Errorf("Unset should succeed, detail: %s", res.Detail)
	}
	if runner.callCount(key) != 1 {
		t.Error("Unset must set the documented neutral token, netsh has no true unset")
	}
}

func TestNetshSetInvalidatesCache(t *testing.T) {
	runner := newFakeRunner()
	showKey := cmdKey("netsh", "interface", "tcp", "show", "global")
	runner.on(showKey, CmdResult{Output: showGlobalOutput})
	runner.on(cmdKey("netsh", "interface", "tcp", "set", "global", "autotuninglevel=restricted"), CmdResult{Output: "Ok.\n"})
	m := NewNetshManager(runner, zap.NewNop())

	m.Get(autotuningParam)
	m.Set(autotuningParam, "restricted")
	m.Get(autotuningParam)

	if got := runner.callCount(showKey); got != 2 {
		t.Errorf("show global invoked %d times, want 2 (cache dropped after set)", got)
	}
}
