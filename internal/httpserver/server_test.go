package httpserver

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"

	"github.com/pable/cs-logstats/internal/aggregator"
	"github.com/pable/cs-logstats/internal/parser"
	"github.com/pable/cs-logstats/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const sampleLog = `L 10/12/2021 - 20:00:00: [FACEIT^] LIVE!
L 10/12/2021 - 20:00:01: World triggered "Match_Start" on "de_dust2"
L 10/12/2021 - 20:00:02: World triggered "Round_Start"
L 10/12/2021 - 20:00:30: "A<1><STEAM_1:0:1><CT>" [0 0 0] killed "B<2><STEAM_1:0:2><TERRORIST>" [1 1 1] with "ak47" (headshot)
L 10/12/2021 - 20:01:00: World triggered "Round_End"
`

func newTestServer(t *testing.T) (*Server, *storage.DB, http.Handler) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := NewServer("", store, aggregator.DefaultOptions(), nil)
	return srv, store, srv.Handler()
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v\n%s", err, w.Body.String())
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	_, _, h := newTestServer(t)

	w := do(t, h, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode(t, w)
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["log_count"] != float64(0) {
		t.Errorf("log_count = %v, want 0", resp["log_count"])
	}
}

func TestParseRawBodyStoresReports(t *testing.T) {
	_, store, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/parse?name=match.log", strings.NewReader(sampleLog))
	req.Header.Set("Content-Type", "text/plain")
	w := do(t, h, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	resp := decode(t, w)
	hash := parser.HashLog(sampleLog)
	if resp["hash"] != hash || resp["stored"] != true || resp["duplicate"] != false {
		t.Errorf("resp = %v", resp)
	}
	reports := resp["reports"].(map[string]any)
	kills := reports["kill_stats"].(map[string]any)
	if kills["total_kills"] != float64(1) {
		t.Errorf("total_kills = %v, want 1", kills["total_kills"])
	}
	summary := reports["match_summary"].(map[string]any)
	if summary["map"] != "de_dust2" {
		t.Errorf("map = %v, want de_dust2", summary["map"])
	}

	exists, err := store.LogExists(hash)
	if err != nil || !exists {
		t.Errorf("LogExists = %v, %v", exists, err)
	}
}

func TestParseDuplicateIsNotRestored(t *testing.T) {
	_, _, h := newTestServer(t)

	for i, wantStored := range []bool{true, false} {
		w := do(t, h, httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(sampleLog)))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
		resp := decode(t, w)
		if resp["stored"] != wantStored || resp["duplicate"] != !wantStored {
			t.Errorf("request %d: stored=%v duplicate=%v", i, resp["stored"], resp["duplicate"])
		}
	}

	w := do(t, h, httptest.NewRequest(http.MethodPost, "/api/parse?force=true", strings.NewReader(sampleLog)))
	resp := decode(t, w)
	if resp["stored"] != true || resp["duplicate"] != true {
		t.Errorf("forced: stored=%v duplicate=%v", resp["stored"], resp["duplicate"])
	}
}

func TestParseMultipart(t *testing.T) {
	_, _, h := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("log", "server.log")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte(sampleLog))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/parse", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := do(t, h, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if resp := decode(t, w); resp["source"] != "server.log" {
		t.Errorf("source = %v, want server.log", resp["source"])
	}
}

func TestParseRejectsEmptyBody(t *testing.T) {
	_, _, h := newTestServer(t)

	w := do(t, h, httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader("  \n")))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if resp := decode(t, w); resp["error"] == nil {
		t.Error("expected error field")
	}
}

func TestParseRejectsOversizedLogs(t *testing.T) {
	srv, store, h := newTestServer(t)
	srv.maxUpload = 4096

	// Small on the wire, far over the cap once decompressed.
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write(bytes.Repeat([]byte(sampleLog), 1000))
	zw.Close()
	if gz.Len() >= 4096 {
		t.Fatalf("compressed size %d, want under the cap", gz.Len())
	}

	cases := map[string]struct {
		name string
		body []byte
	}{
		"gzip":  {"big.log.gz", gz.Bytes()},
		"plain": {"big.log", bytes.Repeat([]byte(sampleLog), 100)},
	}
	for label, c := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/parse?name="+c.name, bytes.NewReader(c.body))
		w := do(t, h, req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("%s: status = %d, want 413: %s", label, w.Code, w.Body.String())
		}
	}

	if n, _ := store.LogCount(); n != 0 {
		t.Errorf("stored %d logs, want 0", n)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/parse?name=ok.log", strings.NewReader(sampleLog))
	if w := do(t, h, req); w.Code != http.StatusOK {
		t.Errorf("log under the cap: status = %d", w.Code)
	}
}

func TestLogEndpoints(t *testing.T) {
	_, _, h := newTestServer(t)
	do(t, h, httptest.NewRequest(http.MethodPost, "/api/parse?name=a.log", strings.NewReader(sampleLog)))
	prefix := parser.HashLog(sampleLog)[:8]

	w := do(t, h, httptest.NewRequest(http.MethodGet, "/api/logs", nil))
	if resp := decode(t, w); resp["count"] != float64(1) {
		t.Errorf("list count = %v, want 1", resp["count"])
	}

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/api/logs/"+prefix, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get log status = %d", w.Code)
	}
	resp := decode(t, w)
	if log := resp["log"].(map[string]any); log["map"] != "de_dust2" || log["source"] != "a.log" {
		t.Errorf("log = %v", log)
	}

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/api/logs/"+prefix+"/round_timings", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get report status = %d", w.Code)
	}
	timing := decode(t, w)
	if timing["total_rounds"] != float64(1) || timing["longest_round"] != float64(58) {
		t.Errorf("timing = %v", timing)
	}
}

func TestLogEndpointsNotFound(t *testing.T) {
	_, _, h := newTestServer(t)

	cases := []string{
		"/api/logs/ffff",
		"/api/logs/ffff/kill_stats",
		"/api/logs/ffff/bogus",
	}
	for _, path := range cases {
		w := do(t, h, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, w.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, _, h := newTestServer(t)
	do(t, h, httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(sampleLog)))

	w := do(t, h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `cslogstats_parses_total{result="parsed"} 1`) {
		t.Errorf("metrics output missing parse counter:\n%s", w.Body.String())
	}
}
