// Package types provides shared data types
package types

// Backend identifies the configuration surface a parameter lives on
type Backend string

const (
	BackendRegistry          Backend = "registry"
	BackendNetshGlobal       Backend = "netsh_global"
	BackendNetshSupplemental Backend = "netsh_supplemental"
	BackendServiceState      Backend = "service"
	BackendPowerPlan         Backend = "power_plan"
)

// ValueKind describes how a parameter's value is typed and validated
type ValueKind string

const (
	ValueInt  ValueKind = "int"
	ValueEnum ValueKind = "enum"
	ValueGUID ValueKind = "guid"
)

// RegistryRoot selects the registry hive for registry-backed parameters
type RegistryRoot string

const (
	RootLocalMachine RegistryRoot = "HKLM"
	RootCurrentUser  RegistryRoot = "HKCU"
)

// Parameter describes one tunable. The catalog builds these once at startup
// and they are never mutated afterwards.
type Parameter struct {
	Key         string    `json:"key"`
	Backend     Backend   `json:"backend"`
	Kind        ValueKind `json:"kind"`
	Allowed     []string  `json:"allowed,omitempty"`
	Default     string    `json:"default"`
	Description string    `json:"description,omitempty"`

	// Registry locator
	RegistryRoot  RegistryRoot `json:"registry_root,omitempty"`
	RegistryPath  string       `json:"registry_path,omitempty"`
	RegistryValue string       `json:"registry_value,omitempty"`

	// Netsh locator: Setting is the "set" argument name, Field the label
	// netsh prints in its "show" output.
	NetshSetting string `json:"netsh_setting,omitempty"`
	NetshField   string `json:"netsh_field,omitempty"`

	// Service locator
	ServiceName string `json:"service_name,omitempty"`
}

// AllowsValue reports whether v is acceptable for an enum-kind parameter.
// Non-enum kinds always return true; numeric and GUID coercion is the
// backend adapter's job.
func (p Parameter) AllowsValue(v string) bool {
	if p.Kind != ValueEnum || len(p.Allowed) == 0 {
		return true
	}
	for _, a := range p.Allowed {
		if a == v {
			return true
		}
	}
	return false
}

// ValueState classifies what a backend reported for a parameter
type ValueState string

const (
	// StatePresent means the backend returned a concrete value
	StatePresent ValueState = "present"
	// StateAbsent means the backend explicitly reports "not configured".
	// On restore an absent entry translates to unsetting the value, not
	// writing a literal default.
	StateAbsent ValueState = "absent"
	// StateQueryError means the read failed or the output did not parse
	StateQueryError ValueState = "query_error"
)

// ObservedValue is one parameter's value as read from its backend
type ObservedValue struct {
	Key    string     `json:"key"`
	State  ValueState `json:"state"`
	Value  string     `json:"value,omitempty"`
	Detail string     `json:"detail,omitempty"`
}

// Present builds an observed value for a successful read
func Present(key, value string) ObservedValue {
	return ObservedValue{Key: key, State: StatePresent, Value: value}
}

// Absent builds an observed value for a backend's "not configured" state
func Absent(key string) ObservedValue {
	return ObservedValue{Key: key, State: StateAbsent}
}

// QueryError builds an observed value for a failed or unparseable read
func QueryError(key, detail string) ObservedValue {
	return ObservedValue{Key: key, State: StateQueryError, Detail: detail}
}

// Result is the outcome of a single backend write. Failure is data, not
// control flow: a failed Set never aborts the remaining entries.
type Result struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// OKResult builds a successful write result
func OKResult(detail string) Result {
	return Result{OK: true, Detail: detail}
}

// FailResult builds a failed write result
func FailResult(detail string) Result {
	return Result{OK: false, Detail: detail}
}
