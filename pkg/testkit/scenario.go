// Package testkit drives an http.Handler from JSON scenario files.
//
// A scenario is an ordered list of steps sharing one client session: cookies
// set by a response are sent on later steps, and values captured from a
// response body can be used as {{placeholders}} in later URLs and bodies.
//
//	testdata/
//	  purchase_flow.json      <- scenario
//	  health_res.json         <- exact expected body (optional)
//
//	{
//	  "name": "purchase flow",
//	  "steps": [
//	    {"name": "login", "method": "POST", "url": "/api/v1/auth/login",
//	     "body": {"email": "admin@example.com", "password": "secret1"},
//	     "expectedCode": 200},
//	    {"name": "create", "method": "POST", "url": "/api/v1/sweet",
//	     "body": {"name": "Ladoo", ...}, "expectedCode": 201,
//	     "capture": {"id": "sweet._id"}},
//	    {"name": "buy", "method": "POST", "url": "/api/v1/inventory/{{id}}/purchase",
//	     "body": {"quantity": 1}, "expectedCode": 200,
//	     "expect": {"sweet": {"quantity": 9}}}
//	  ]
//	}
//
// Run a directory of scenarios from a test:
//
//	testkit.RunDir(t, handler, "testdata")
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scenario is one JSON file: a named sequence of requests.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`

	dir string
}

// Step is one request and what its response must look like.
type Step struct {
	Name    string            `json:"name"`
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`

	// Body is sent as JSON. BodyFile, relative to the scenario, wins when set.
	Body     json.RawMessage `json:"body"`
	BodyFile string          `json:"bodyFile"`

	ExpectedCode int `json:"expectedCode"`

	// Expect must be a subset of the JSON response. "*" matches any
	// present value.
	Expect json.RawMessage `json:"expect"`
	// ExpectAbsent lists dotted paths that must not exist in the response.
	ExpectAbsent []string `json:"expectAbsent"`
	// ResponseFile is compared with the whole response body.
	ResponseFile string `json:"responseFile"`
	// ExpectedText is compared with a non-JSON response body.
	ExpectedText *string `json:"expectedText"`
	// ExpectedHeaders must be present with these exact values.
	ExpectedHeaders map[string]string `json:"expectedHeaders"`

	// Capture stores response values under a name for later steps,
	// e.g. {"sweetId": "sweet._id"}.
	Capture map[string]string `json:"capture"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if st.URL == "" {
			return fmt.Errorf("steps[%d].url is required", i)
		}
		if st.ExpectedCode == 0 {
			return fmt.Errorf("steps[%d].expectedCode is required", i)
		}
		if st.Method == "" {
			st.Method = "GET"
		}
		st.Method = strings.ToUpper(st.Method)
		if st.Name == "" {
			st.Name = fmt.Sprintf("%d %s %s", i+1, st.Method, st.URL)
		}
	}
	return nil
}

// path resolves a file name relative to the scenario.
func (s *Scenario) path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// LoadAllFromDir loads every *.json scenario in dir. Files whose names end
// in _req.json or _res.json are body fixtures and are skipped.
func LoadAllFromDir(dir string) ([]*Scenario, []error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		return nil, []error{fmt.Errorf("testkit: no scenario files found in %q", dir)}
	}

	var (
		scenarios []*Scenario
		errs      []error
	)
	for _, path := range entries {
		if isFixture(path) {
			continue
		}
		s, err := LoadScenario(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, errs
}

func isFixture(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, "_req.json") || strings.HasSuffix(base, "_res.json")
}
