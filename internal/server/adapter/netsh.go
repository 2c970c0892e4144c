package adapter

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/ghosthack3r/wintune/internal/shared/types"
	"go.uber.org/zap"
)

type netshClass int

const (
	netshGlobal netshClass = iota
	netshSupplemental
)

var (
	// Supplemental output lists one block per template plus an "Effective
	// settings" block; the effective block wins, the internet template is
	// the fallback.
	effectiveBlockRe = regexp.MustCompile(`(?is)Effective settings\s*-+\s*(.*?)(?:\n\s*Template|\z)`)
	internetBlockRe  = regexp.MustCompile(`(?is)Template\s*:\s*internet\s*-+\s*(.*?)(?:\n\s*Template|\z)`)
	congestionRe     = regexp.MustCompile(`(?i)Congestion Control Provider\s*:\s*(\w+)`)
)

type netshCapture struct {
	output string
	err    error
}

// NetshManager handles TCP settings controlled through netsh. Each query
// pass runs the fixed "show" command for a backend class once and answers
// individual parameter reads from that captured block.
type NetshManager struct {
	runner Runner
	logger *zap.Logger

	mu    sync.Mutex
	cache map[netshClass]*netshCapture
}

// NewNetshManager creates a new NetshManager
func NewNetshManager(runner Runner, logger *zap.Logger) *NetshManager {
	return &NetshManager{
		runner: runner,
		logger: logger,
		cache:  make(map[netshClass]*netshCapture),
	}
}

// Reset drops captured show output so the next Get re-queries the tool.
// The engine calls this at the start of every query pass.
func (m *NetshManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[netshClass]*netshCapture)
}

func classFor(b types.Backend) netshClass {
	if b == types.BackendNetshSupplemental {
		return netshSupplemental
	}
	return netshGlobal
}

func showArgs(class netshClass) []string {
	if class == netshSupplemental {
		return []string{"int", "tcp", "show", "supplemental"}
	}
	return []string{"interface", "tcp", "show", "global"}
}

func (m *NetshManager) capture(class netshClass) *netshCapture {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.cache[class]; ok {
		return c
	}

	res, err := m.runner.Run(context.Background(), "netsh", showArgs(class)...)
	c := &netshCapture{output: res.Output}
	if err != nil {
		c.err = err
	} else if res.ExitCode != 0 {
		c.err = fmt.Errorf("netsh show exited with code %d: %s", res.ExitCode, truncate(res.Output, 120))
	}

	m.cache[class] = c
	return c
}

// Get extracts the parameter's field from the captured show output.
// An unmatched field is a QueryError, never retried automatically.
func (m *NetshManager) Get(p types.Parameter) types.ObservedValue {
	c := m.capture(classFor(p.Backend))
	if c.err != nil {
		return types.QueryError(p.Key, c.err.Error())
	}

	if p.Backend == types.BackendNetshSupplemental {
		return m.parseSupplemental(p, c.output)
	}

	value, ok := parseShowField(c.output, p.NetshField)
	if !ok {
		m.logger.Warn("netsh field not found in show output",
			zap.String("key", p.Key),
			zap.String("field", p.NetshField))
		return types.QueryError(p.Key, fmt.Sprintf("field %q not matched in netsh output", p.NetshField))
	}
	return types.Present(p.Key, value)
}

func (m *NetshManager) parseSupplemental(p types.Parameter, output string) types.ObservedValue {
	block := output
	if match := effectiveBlockRe.FindStringSubmatch(output); match != nil {
		block = match[1]
	} else if match := internetBlockRe.FindStringSubmatch(output); match != nil {
		block = match[1]
	}

	if match := congestionRe.FindStringSubmatch(block); match != nil {
		return types.Present(p.Key, strings.ToLower(match[1]))
	}
	return types.QueryError(p.Key, fmt.Sprintf("field %q not matched in netsh supplemental output", p.NetshField))
}

// Set runs the fixed "set" command template for the parameter. A nonzero
// exit code, or output carrying an error/invalid/incorrect marker, is a
// failure even when the process exits 0.
func (m *NetshManager) Set(p types.Parameter, value string) types.Result {
	var args []string
	if p.Backend == types.BackendNetshSupplemental {
		args = []string{"int", "tcp", "set", "supplemental", "template=internet",
			fmt.Sprintf("%s=%s", p.NetshSetting, value)}
	} else {
		args = []string{"interface", "tcp", "set", "global",
			fmt.Sprintf("%s=%s", p.NetshSetting, value)}
	}

	res, err := m.runner.Run(context.Background(), "netsh", args...)
	if err != nil {
		return types.FailResult(err.Error())
	}
	if res.ExitCode != 0 || outputIndicatesFailure(res.Output) {
		m.logger.Warn("netsh set rejected",
			zap.String("key", p.Key),
			zap.String("value", value),
			zap.Int("exit_code", res.ExitCode),
			zap.String("output", truncate(res.Output, 200)))
		detail := strings.TrimSpace(res.Output)
		if detail == "" {
			detail = fmt.Sprintf("netsh exited with code %d", res.ExitCode)
		}
		return types.FailResult(detail)
	}

	m.invalidate(classFor(p.Backend))
	return types.OKResult(fmt.Sprintf("netsh %s=%s applied", p.NetshSetting, value))
}

// Unset writes the backend's documented neutral token. Netsh exposes no
// true "unset", so "default" is the closest reversal it offers.
func (m *NetshManager) Unset(p types.Parameter) types.Result {
	return m.Set(p, "default")
}

func (m *NetshManager) invalidate(class netshClass) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, class)
}

// parseShowField pulls one "Label : value" line out of netsh show output
func parseShowField(output, field string) (string, bool) {
	re := regexp.MustCompile(`(?im)^\s*` + regexp.QuoteMeta(field) + `\s*:\s*(\S+)`)
	if match := re.FindStringSubmatch(output); match != nil {
		return strings.ToLower(strings.TrimSpace(match[1])), true
	}
	return "", false
}
