package runner

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func setupRunnerTest(t *testing.T, opts ...Option) *Runner {
	t.Helper()

	r, err := New(opts...)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	t.Cleanup(func() { r.Close() })

	return r
}

func TestVerifyResult(t *testing.T) {
	r := setupRunnerTest(t)

	err := r.LoadString(`
		function verify(user, password)
			return user == "admin" and password == "hunter2"
		end
	`)
	if err != nil {
		t.Fatalf("LoadString error = %v", err)
	}

	valid, err := r.Verify("admin", "hunter2")
	if err != nil {
		t.Fatalf("Verify error = %v", err)
	}
	if !valid {
		t.Error("Verify = false, want true")
	}

	valid, err = r.Verify("admin", "wrong")
	if err != nil {
		t.Fatalf("Verify error = %v", err)
	}
	if valid {
		t.Error("Verify = true, want false")
	}
}

func TestVerifyMissingFunction(t *testing.T) {
	r := setupRunnerTest(t)

	if err := r.LoadString(`x = 1`); err != nil {
		t.Fatalf("LoadString error = %v", err)
	}

	if _, err := r.Verify("u", "p"); err == nil {
		t.Error("Verify error = nil, want missing function")
	}
}

func TestVerifyNoReturnValue(t *testing.T) {
	r := setupRunnerTest(t)

	if err := r.LoadString(`function verify(user, password) end`); err != nil {
		t.Fatalf("LoadString error = %v", err)
	}

	if _, err := r.Verify("u", "p"); err == nil {
		t.Error("Verify error = nil, want no value")
	}
}

func TestScriptUsesCapabilities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostFormValue("user") == "admin" && r.PostFormValue("password") == "hunter2" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	r := setupRunnerTest(t)

	err := r.LoadString(`
		function verify(user, password)
			local session = http_mksession()
			local req = http_request(session, "POST", "` + srv.URL + `", {
				form = {user = user, password = password},
			})
			local resp = http_send(req)
			if resp == false then
				return false
			end
			return resp.status == 200
		end
	`)
	if err != nil {
		t.Fatalf("LoadString error = %v", err)
	}

	valid, err := r.Verify("admin", "hunter2")
	if err != nil {
		t.Fatalf("Verify error = %v", err)
	}
	if !valid {
		t.Error("Verify = false, want true")
	}

	valid, err = r.Verify("admin", "wrong")
	if err != nil {
		t.Fatalf("Verify error = %v", err)
	}
	if valid {
		t.Error("Verify = true, want false")
	}
}

func TestRunnerLastError(t *testing.T) {
	r := setupRunnerTest(t)

	if _, ok := r.LastError(); ok {
		t.Error("LastError set before any failure")
	}

	if err := r.LoadString(`base64_decode("====")`); err != nil {
		t.Fatalf("LoadString error = %v", err)
	}

	msg, ok := r.LastError()
	if !ok || !strings.Contains(msg, "invalid base64 input") {
		t.Errorf("LastError = %q, %v", msg, ok)
	}
}

func TestRunnerOutput(t *testing.T) {
	var buf bytes.Buffer
	r := setupRunnerTest(t, WithOutput(&buf))

	if err := r.LoadString(`print("hello")`); err != nil {
		t.Fatalf("LoadString error = %v", err)
	}

	if got := buf.String(); got != "\"hello\"\n" {
		t.Errorf("output = %q", got)
	}
}

func TestRunnerIsolation(t *testing.T) {
	a := setupRunnerTest(t)
	b := setupRunnerTest(t)

	// Each runner owns its own error slot.
	if err := a.LoadString(`base64_decode("====")`); err != nil {
		t.Fatalf("LoadString error = %v", err)
	}

	if _, ok := b.LastError(); ok {
		t.Error("failure in one runner leaked into another")
	}
}

func TestRunnerClose(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := r.LoadString(`x = 1`); err == nil {
		t.Error("LoadString after Close error = nil")
	}
}
