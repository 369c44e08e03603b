package syncapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/twellen/glossover/glossary"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc, err := glossary.Open(filepath.Join(t.TempDir(), "glossary.db"))
	if err != nil {
		t.Fatalf("open glossary: %v", err)
	}
	t.Cleanup(func() { svc.Close() })

	ts := httptest.NewServer(New(svc, nil).Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := doJSON(t, "GET", ts.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := doJSON(t, "GET", ts.URL+"/health", nil)
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if resp.Header.Get("X-Trace-ID") == "" {
		t.Error("missing X-Trace-ID")
	}
}

func TestEntryLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, "POST", ts.URL+"/api/entries", glossary.Entry{
		Term:       "Company",
		Definition: "<p>An organization.</p>",
		Enabled:    true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", resp.StatusCode, body)
	}
	var created glossary.Entry
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("created entry has no ID")
	}

	resp, body = doJSON(t, "GET", ts.URL+"/api/entries/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}

	created.Aliases = []string{"Account"}
	resp, body = doJSON(t, "PUT", ts.URL+"/api/entries/"+created.ID, created)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d: %s", resp.StatusCode, body)
	}
	var updated glossary.Entry
	json.Unmarshal(body, &updated)
	if len(updated.Aliases) != 1 || updated.Aliases[0] != "Account" {
		t.Fatalf("aliases = %v", updated.Aliases)
	}

	resp, body = doJSON(t, "GET", ts.URL+"/api/entries", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var list []glossary.Entry
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("list = %d entries", len(list))
	}

	resp, _ = doJSON(t, "DELETE", ts.URL+"/api/entries/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, "GET", ts.URL+"/api/entries/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", resp.StatusCode)
	}
}

func TestCreateInvalidEntry(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := doJSON(t, "POST", ts.URL+"/api/entries", glossary.Entry{Term: "   "})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestUpdateUnknownEntry(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := doJSON(t, "PUT", ts.URL+"/api/entries/nope", glossary.Entry{Term: "X"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListEnabledOnly(t *testing.T) {
	ts := newTestServer(t)
	doJSON(t, "POST", ts.URL+"/api/entries", glossary.Entry{Term: "On", Enabled: true})
	doJSON(t, "POST", ts.URL+"/api/entries", glossary.Entry{Term: "Off", Enabled: false})

	_, body := doJSON(t, "GET", ts.URL+"/api/entries?enabled=true", nil)
	var list []glossary.Entry
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Term != "On" {
		t.Fatalf("enabled list = %+v", list)
	}
}

func TestVersionChangesAfterWrite(t *testing.T) {
	ts := newTestServer(t)

	_, body := doJSON(t, "GET", ts.URL+"/api/version", nil)
	var v0 map[string]string
	json.Unmarshal(body, &v0)

	doJSON(t, "POST", ts.URL+"/api/entries", glossary.Entry{Term: "Company", Enabled: true})

	_, body = doJSON(t, "GET", ts.URL+"/api/version", nil)
	var v1 map[string]string
	json.Unmarshal(body, &v1)

	if v0["version"] == v1["version"] {
		t.Fatalf("version unchanged across write: %s", v1["version"])
	}
}
