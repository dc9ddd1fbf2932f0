package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

// Run executes one scenario file against handler.
func Run(t *testing.T, handler http.Handler, scenarioPath string) {
	t.Helper()

	s, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", scenarioPath, err)
	}
	t.Run(s.Name, func(t *testing.T) {
		RunScenario(t, handler, s)
	})
}

// RunDir runs every scenario in dir as a subtest. Each scenario gets a
// fresh session but shares the handler, so scenarios must not depend on
// each other's data.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	scenarios, errs := LoadAllFromDir(dir)
	for _, err := range errs {
		t.Errorf("%v", err)
	}
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			RunScenario(t, handler, s)
		})
	}
}

// RunScenario executes the steps of s in order. It stops at the first step
// whose status code does not match, since later steps usually depend on it.
func RunScenario(t *testing.T, handler http.Handler, s *Scenario) {
	t.Helper()

	sess := newSession()
	for i := range s.Steps {
		if !sess.step(t, handler, s, &s.Steps[i]) {
			return
		}
	}
}

// session carries cookies and captured values between steps.
type session struct {
	cookies map[string]*http.Cookie
	vars    map[string]string
}

func newSession() *session {
	return &session{cookies: map[string]*http.Cookie{}, vars: map[string]string{}}
}

func (ss *session) expand(in string) string {
	for k, v := range ss.vars {
		in = strings.ReplaceAll(in, "{{"+k+"}}", v)
	}
	return in
}

func (ss *session) body(t *testing.T, s *Scenario, st *Step) io.Reader {
	t.Helper()

	var raw []byte
	switch {
	case st.BodyFile != "":
		data, err := os.ReadFile(s.path(st.BodyFile))
		if err != nil {
			t.Fatalf("[%s/%s] read body file: %v", s.Name, st.Name, err)
		}
		raw = data
	case len(st.Body) > 0:
		raw = st.Body
	default:
		return nil
	}
	return strings.NewReader(ss.expand(string(raw)))
}

func (ss *session) step(t *testing.T, handler http.Handler, s *Scenario, st *Step) bool {
	t.Helper()
	label := s.Name + "/" + st.Name

	req := httptest.NewRequest(st.Method, ss.expand(st.URL), ss.body(t, s, st))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range st.Headers {
		req.Header.Set(k, ss.expand(v))
	}
	for _, c := range ss.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	ss.keepCookies(rec.Result().Cookies())

	if !AssertStatusCode(t, label, st.ExpectedCode, rec.Code, rec.Body.Bytes()) {
		return false
	}

	for k, v := range st.ExpectedHeaders {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("[%s] header %s: expected %q, got %q", label, k, v, got)
		}
	}

	if st.ExpectedText != nil && rec.Body.String() != *st.ExpectedText {
		t.Errorf("[%s] body: expected %q, got %q", label, *st.ExpectedText, rec.Body.String())
	}

	if st.ResponseFile != "" {
		expected, err := os.ReadFile(s.path(st.ResponseFile))
		if err != nil {
			t.Errorf("[%s] read response file: %v", label, err)
		} else {
			AssertJSONBody(t, label, expected, rec.Body.Bytes())
		}
	}

	if len(st.Expect) == 0 && len(st.ExpectAbsent) == 0 && len(st.Capture) == 0 {
		return true
	}

	var actual any
	if err := json.Unmarshal(rec.Body.Bytes(), &actual); err != nil {
		t.Errorf("[%s] response is not JSON: %v\nbody: %s", label, err, rec.Body.String())
		return true
	}

	if len(st.Expect) > 0 {
		AssertSubset(t, label, []byte(ss.expand(string(st.Expect))), actual)
	}
	for _, p := range st.ExpectAbsent {
		if _, ok := Lookup(actual, p); ok {
			t.Errorf("[%s] %s: expected to be absent", label, p)
		}
	}
	for name, p := range st.Capture {
		v, ok := Lookup(actual, p)
		if !ok {
			t.Errorf("[%s] capture %s: path %s not found", label, name, p)
			continue
		}
		ss.vars[name] = scalar(v)
	}
	return true
}

func (ss *session) keepCookies(cookies []*http.Cookie) {
	for _, c := range cookies {
		if c.MaxAge < 0 || c.Value == "" {
			delete(ss.cookies, c.Name)
			continue
		}
		ss.cookies[c.Name] = c
	}
}

func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	default:
		b, _ := json.Marshal(x)
		return string(bytes.Trim(b, `"`))
	}
}
