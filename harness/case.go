package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type Operation string

const (
	SyncToSync   Operation = "syncToSync"
	SyncToAsync  Operation = "syncToAsync"
	AsyncToAsync Operation = "asyncToAsync"
)

// Failure describes how a case is expected to fail.
type Failure string

const (
	// FailSync means the call itself returns an error.
	FailSync Failure = "sync"
	// FailCallback means the call succeeds and the error callback is invoked
	// later.
	FailCallback Failure = "callback"
)

// Case is one call of a provider operation with its expected outcome. Exactly
// one of Want and Fail is set.
type Case struct {
	Op   Operation `yaml:"op"`
	A    int64     `yaml:"a"`
	B    int64     `yaml:"b"`
	Want *int64    `yaml:"want,omitempty"`
	Fail Failure   `yaml:"fail,omitempty"`
}

func (c Case) String() string {
	return fmt.Sprintf("%s(%d, %d)", c.Op, c.A, c.B)
}

func (c Case) Validate() error {
	switch c.Op {
	case SyncToSync, SyncToAsync, AsyncToAsync:
	default:
		return fmt.Errorf("unknown operation %q", c.Op)
	}

	switch {
	case c.Want != nil && c.Fail != "":
		return errors.New("want and fail are mutually exclusive")
	case c.Want == nil && c.Fail == "":
		return errors.New("one of want or fail is required")
	}

	switch c.Fail {
	case "", FailSync:
	case FailCallback:
		if c.Op == SyncToSync {
			return fmt.Errorf("%s has no error callback", c.Op)
		}
	default:
		return fmt.Errorf("unknown failure %q", c.Fail)
	}
	return nil
}

// Succeed returns a case that expects the result want.
func Succeed(op Operation, a, b, want int64) Case {
	return Case{Op: op, A: a, B: b, Want: &want}
}

// Fail returns a case that expects the failure f.
func Fail(op Operation, a, b int64, f Failure) Case {
	return Case{Op: op, A: a, B: b, Fail: f}
}

// DefaultCases returns the cases every provider has to pass.
func DefaultCases() []Case {
	return []Case{
		Succeed(SyncToSync, 1, 1, 2),
		Fail(SyncToSync, 5, 1, FailSync),
		Fail(SyncToSync, 4, 40, FailSync),

		Succeed(SyncToAsync, 1, 2, 3),
		Succeed(SyncToAsync, 3, 2, 5),
		Fail(SyncToAsync, 5, 1, FailSync),
		Fail(SyncToAsync, 4, 40, FailCallback),

		Succeed(AsyncToAsync, 1, 2, 3),
		Succeed(AsyncToAsync, 3, 2, 5),
		Fail(AsyncToAsync, 5, 1, FailSync),
		Fail(AsyncToAsync, 4, 40, FailCallback),
	}
}

type caseFile struct {
	Cases []Case `yaml:"cases"`
}

// ParseCases reads cases from YAML:
//
//	cases:
//	  - {op: syncToSync, a: 1, b: 1, want: 2}
//	  - {op: syncToAsync, a: 4, b: 40, fail: callback}
func ParseCases(r io.Reader) ([]Case, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f caseFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("case file is empty")
		}
		return nil, fmt.Errorf("failed to decode cases: %w", err)
	}

	for i, c := range f.Cases {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("case %d (%s): %w", i, c, err)
		}
	}
	return f.Cases, nil
}

// LoadCases reads cases from a YAML file.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}
	return ParseCases(bytes.NewReader(data))
}

// MarshalCases writes cases in the format read by ParseCases.
func MarshalCases(cases []Case) ([]byte, error) {
	return yaml.Marshal(caseFile{Cases: cases})
}
