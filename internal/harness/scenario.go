package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one end-to-end test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; the golden snapshot file
	// is named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Responses scripts the fake service, keyed by endpoint. Responses
	// for the same endpoint are consumed in order; a sticky response
	// answers every call once the one-shot queue is drained.
	Responses []ScriptedResponse `yaml:"responses,omitempty"`

	// Flow contains the operations to run, in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final cache state and the recorded calls.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Snapshot enables the golden comparison of the final state.
	Snapshot bool `yaml:"snapshot,omitempty"`
}

// ScriptedResponse is one scripted service reply.
type ScriptedResponse struct {
	// Endpoint is the logical endpoint name (e.g. "DutyRoster/addDuty").
	Endpoint string `yaml:"endpoint"`

	// Status is the HTTP status; 0 means 200.
	Status int `yaml:"status,omitempty"`

	// Body is the raw reply body.
	Body string `yaml:"body"`

	// Sticky makes the reply answer every call instead of one.
	Sticky bool `yaml:"sticky,omitempty"`
}

// FlowStep is one cache operation.
type FlowStep struct {
	// Op names the operation (e.g. "login", "duties.add"); see the
	// runner for the full catalogue.
	Op string `yaml:"op"`

	// Args contains the operation arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// ExpectError, when non-empty, requires the operation to fail with
	// an error containing this substring. Otherwise the operation must
	// succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates final state or the call record.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Endpoint and Count are used by call_count.
	Endpoint string `yaml:"endpoint,omitempty"`
	Count    int    `yaml:"count,omitempty"`

	// Cache and Equals are used by error_slot. Cache is one of
	// session, events, duties, templates, notifications.
	Cache  string `yaml:"cache,omitempty"`
	Equals string `yaml:"equals,omitempty"`

	// Event, Duty, Present are used by archived; Duty and Status by
	// duty_status.
	Event   string `yaml:"event,omitempty"`
	Duty    string `yaml:"duty,omitempty"`
	Present bool   `yaml:"present,omitempty"`
	Status  string `yaml:"status,omitempty"`

	// Assignee is used by duty_status (optional).
	Assignee string `yaml:"assignee,omitempty"`
}

// Assertion type constants.
const (
	AssertCallCount  = "call_count"
	AssertErrorSlot  = "error_slot"
	AssertArchived   = "archived"
	AssertDutyStatus = "duty_status"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected to catch typos.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, r := range s.Responses {
		if r.Endpoint == "" {
			return fmt.Errorf("responses[%d]: endpoint is required", i)
		}
		if r.Body == "" {
			return fmt.Errorf("responses[%d]: body is required", i)
		}
	}

	for i, step := range s.Flow {
		if step.Op == "" {
			return fmt.Errorf("flow[%d]: op is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertCallCount:
		if a.Endpoint == "" {
			return fmt.Errorf("assertions[%d]: endpoint is required for call_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertErrorSlot:
		if a.Cache == "" {
			return fmt.Errorf("assertions[%d]: cache is required for error_slot", index)
		}
	case AssertArchived:
		if a.Event == "" || a.Duty == "" {
			return fmt.Errorf("assertions[%d]: event and duty are required for archived", index)
		}
	case AssertDutyStatus:
		if a.Duty == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: duty and status are required for duty_status", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
