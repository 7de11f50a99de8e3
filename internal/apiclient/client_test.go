package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient() *Client {
	return New(&http.Client{}, nil)
}

func TestHealthScenario(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	res := As[map[string]any](newTestClient().Do(context.Background(), Request{
		BaseURL: srv.URL,
		Path:    "/health",
		Method:  MethodGet,
		Token:   "",
	}))
	if !res.OK() {
		t.Fatalf("expected success, got %v", res.Err())
	}
	if got := res.Data()["status"]; got != "ok" {
		t.Fatalf("status = %v, want ok", got)
	}
}

func TestPlainTextErrorScenario(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "maintenance")
	}))
	defer srv.Close()

	res := newTestClient().Do(context.Background(), Request{BaseURL: srv.URL, Path: "/health"})
	if res.OK() {
		t.Fatalf("expected failure")
	}
	f := res.Err()
	if f.Message != "maintenance" {
		t.Errorf("message = %q, want maintenance", f.Message)
	}
	if f.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", f.StatusCode)
	}
	if f.Kind != KindHTTPStatus {
		t.Errorf("kind = %q, want %q", f.Kind, KindHTTPStatus)
	}
}

func TestJSONErrorIsPrettyPrinted(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"object", http.StatusNotFound, `{"detail":"Patient not found"}`, "{\n  \"detail\": \"Patient not found\"\n}"},
		{"array", http.StatusUnprocessableEntity, `[1,2]`, "[\n  1,\n  2\n]"},
		{"string is unquoted", http.StatusServiceUnavailable, `"maintenance"`, "maintenance"},
		{"empty body", http.StatusBadGateway, ``, "HTTP 502 Bad Gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			res := newTestClient().Do(context.Background(), Request{BaseURL: srv.URL, Path: "/patients/9"})
			if res.OK() {
				t.Fatalf("expected failure")
			}
			if res.Err().Message != tt.want {
				t.Errorf("message = %q, want %q", res.Err().Message, tt.want)
			}
			if res.Err().StatusCode != tt.status {
				t.Errorf("status = %d, want %d", res.Err().StatusCode, tt.status)
			}
		})
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		wantOK bool
	}{
		{"ok", http.StatusOK, true},
		{"created", http.StatusCreated, true},
		{"accepted", http.StatusAccepted, true},
		{"bad request", http.StatusBadRequest, false},
		{"unauthorized", http.StatusUnauthorized, false},
		{"forbidden", http.StatusForbidden, false},
		{"conflict", http.StatusConflict, false},
		{"server error", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"id":7}`)
			}))
			defer srv.Close()

			res := newTestClient().Do(context.Background(), Request{BaseURL: srv.URL, Path: "/x"})
			if res.OK() != tt.wantOK {
				t.Fatalf("OK() = %v, want %v", res.OK(), tt.wantOK)
			}
			if res.OK() {
				if res.Err() != nil {
					t.Fatalf("success carries a failure: %v", res.Err())
				}
				typed := As[struct {
					ID int `json:"id"`
				}](res)
				if typed.Data().ID != 7 {
					t.Errorf("id = %d, want 7", typed.Data().ID)
				}
				return
			}
			if res.Err().StatusCode != tt.status {
				t.Errorf("status = %d, want %d", res.Err().StatusCode, tt.status)
			}
			if res.Err().Message == "" {
				t.Error("failure without a message")
			}
		})
	}
}

func TestAuthorizationHeader(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"no token", "", ""},
		{"token", "abc.def.ghi", "Bearer abc.def.ghi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth, gotCT string
			var sawAuth bool
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, sawAuth = r.Header["Authorization"]
				gotAuth = r.Header.Get("Authorization")
				gotCT = r.Header.Get("Content-Type")
				w.WriteHeader(http.StatusNoContent)
			}))
			defer srv.Close()

			res := newTestClient().Do(context.Background(), Request{BaseURL: srv.URL, Path: "/", Token: tt.token})
			if !res.OK() {
				t.Fatalf("unexpected failure: %v", res.Err())
			}
			if gotAuth != tt.want {
				t.Errorf("Authorization = %q, want %q", gotAuth, tt.want)
			}
			if tt.token == "" && sawAuth {
				t.Error("Authorization header sent without a token")
			}
			if gotCT != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", gotCT)
			}
		})
	}
}

func TestRequestBody(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		wantBody string
	}{
		{"absent", nil, ""},
		{"empty object", map[string]any{}, "{}"},
		{"struct", struct {
			MRN string `json:"mrn"`
		}{"MRN-001"}, `{"mrn":"MRN-001"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			var gotMethod string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				data, _ := io.ReadAll(r.Body)
				got = string(data)
				gotMethod = r.Method
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{}`)
			}))
			defer srv.Close()

			res := newTestClient().Do(context.Background(), Request{
				BaseURL: srv.URL,
				Path:    "/patients/",
				Method:  MethodPost,
				Body:    tt.body,
			})
			if !res.OK() {
				t.Fatalf("unexpected failure: %v", res.Err())
			}
			if got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
			if gotMethod != http.MethodPost {
				t.Errorf("method = %s, want POST", gotMethod)
			}
		})
	}
}

func TestUnencodableBody(t *testing.T) {
	res := newTestClient().Do(context.Background(), Request{
		BaseURL: "http://127.0.0.1:1",
		Path:    "/",
		Method:  MethodPost,
		Body:    map[string]any{"ch": make(chan int)},
	})
	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.Err().Kind != KindRequest {
		t.Errorf("kind = %q, want %q", res.Err().Kind, KindRequest)
	}
}

func TestTransportFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := newTestClient().Do(context.Background(), Request{BaseURL: url, Path: "/health"})
	if res.OK() {
		t.Fatal("expected failure")
	}
	f := res.Err()
	if f.Kind != KindTransport {
		t.Errorf("kind = %q, want %q", f.Kind, KindTransport)
	}
	if f.HasStatus() {
		t.Errorf("transport fault carries status %d", f.StatusCode)
	}
	if f.Message == "" {
		t.Error("transport fault without a message")
	}
}

func TestMalformedJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = io.WriteString(w, `{"status":`)
	}))
	defer srv.Close()

	res := newTestClient().Do(context.Background(), Request{BaseURL: srv.URL, Path: "/health"})
	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.Err().Kind != KindInvalidResponse {
		t.Errorf("kind = %q, want %q", res.Err().Kind, KindInvalidResponse)
	}
	if res.Err().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", res.Err().StatusCode)
	}
}

func TestAsText(t *testing.T) {
	p := Success(Payload{Status: 200, ContentType: "text/plain", Raw: []byte("pong")})

	if got := As[string](p); !got.OK() || got.Data() != "pong" {
		t.Errorf("As[string] = %+v", got)
	}
	if got := As[any](p); !got.OK() || got.Data() != "pong" {
		t.Errorf("As[any] = %+v", got)
	}
	raw := As[json.RawMessage](p)
	if !raw.OK() || string(raw.Data()) != `"pong"` {
		t.Errorf("As[json.RawMessage] = %+v", raw)
	}
	empty := As[json.RawMessage](Success(Payload{Status: 200, ContentType: "application/json", JSON: true}))
	if !empty.OK() || string(empty.Data()) != `""` {
		t.Errorf("As[json.RawMessage] of an empty JSON body = %+v", empty)
	}
	got := As[map[string]any](p)
	if got.OK() {
		t.Fatal("text decoded into a map")
	}
	if got.Err().Kind != KindInvalidResponse {
		t.Errorf("kind = %q, want %q", got.Err().Kind, KindInvalidResponse)
	}
}

func TestAsKeepsFailure(t *testing.T) {
	in := Fail[Payload](KindHTTPStatus, "nope", 418)
	out := As[json.RawMessage](in)
	if out.OK() || out.Err().StatusCode != 418 || out.Err().Message != "nope" {
		t.Errorf("failure not carried over: %+v", out.Err())
	}
}

func TestFailAlwaysHasMessage(t *testing.T) {
	r := Fail[int](KindTransport, "", 0)
	if r.OK() {
		t.Fatal("Fail produced a success")
	}
	if r.Err().Message == "" {
		t.Error("empty failure message")
	}
}

func TestPrettyPayload(t *testing.T) {
	p := Payload{JSON: true, Raw: []byte(`{"a":1,"b":[true]}`)}
	want := "{\n  \"a\": 1,\n  \"b\": [\n    true\n  ]\n}"
	if got := p.Pretty(); got != want {
		t.Errorf("Pretty() = %q, want %q", got, want)
	}
}
