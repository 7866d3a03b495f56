package remote

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantBase   string
		shouldFail bool
	}{
		{name: "https", in: "https://github.com/alice/proj.git", wantBase: "https://github.com/alice/proj.git"},
		{name: "trailing slash", in: "https://example.com/alice/proj/", wantBase: "https://example.com/alice/proj"},
		{name: "credentials stripped", in: "https://bob:pw@example.com/r.git", wantBase: "https://example.com/r.git"},
		{name: "query dropped", in: "http://example.com/r?x=1", wantBase: "http://example.com/r"},
		{name: "empty", in: " ", shouldFail: true},
		{name: "no scheme", in: "alice/proj", shouldFail: true},
		{name: "ssh", in: "ssh://git@example.com/r.git", shouldFail: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ep, err := ParseEndpoint(tc.in)
			if tc.shouldFail {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEndpoint: %v", err)
			}
			if ep.BaseURL != tc.wantBase {
				t.Fatalf("BaseURL = %q, want %q", ep.BaseURL, tc.wantBase)
			}
		})
	}
}

func TestEndpointDiscoveryURL(t *testing.T) {
	ep, err := ParseEndpoint("https://example.com/a/b.git")
	if err != nil {
		t.Fatal(err)
	}
	want := "https://example.com/a/b.git/info/refs?service=git-upload-pack"
	if got := ep.DiscoveryURL(); got != want {
		t.Errorf("DiscoveryURL = %q, want %q", got, want)
	}
}

func clearAuthEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GIT_TOKEN", "")
	t.Setenv("GIT_USERNAME", "")
	t.Setenv("GIT_PASSWORD", "")
}

func TestClientListRefs(t *testing.T) {
	clearAuthEnv(t)
	var gotPath, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/x-git-upload-pack-advertisement")
		_, _ = w.Write([]byte(sampleAdvertisement()))
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL + "/alice/proj.git")
	if err != nil {
		t.Fatal(err)
	}
	adv, err := c.ListRefs(context.Background())
	if err != nil {
		t.Fatalf("ListRefs: %v", err)
	}
	if gotPath != "/alice/proj.git/info/refs" || gotQuery != "service=git-upload-pack" {
		t.Errorf("request = %s?%s", gotPath, gotQuery)
	}
	if len(adv.Refs) != 3 {
		t.Errorf("refs = %d, want 3", len(adv.Refs))
	}
}

func TestClientGzipResponse(t *testing.T) {
	clearAuthEnv(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			t.Errorf("Accept-Encoding = %q", r.Header.Get("Accept-Encoding"))
		}
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, _ = zw.Write([]byte(sampleAdvertisement()))
		_ = zw.Close()
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL + "/r.git")
	if err != nil {
		t.Fatal(err)
	}
	data, err := c.FetchAdvertisement(context.Background())
	if err != nil {
		t.Fatalf("FetchAdvertisement: %v", err)
	}
	if string(data) != sampleAdvertisement() {
		t.Errorf("decoded body = %q", data)
	}
}

func TestClientAuth(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		url   string
		check func(t *testing.T, r *http.Request)
	}{
		{
			name: "token",
			env:  map[string]string{"GIT_TOKEN": "tok"},
			check: func(t *testing.T, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer tok" {
					t.Errorf("Authorization = %q", got)
				}
			},
		},
		{
			name: "userinfo",
			url:  "bob:secret@",
			check: func(t *testing.T, r *http.Request) {
				user, pass, ok := r.BasicAuth()
				if !ok || user != "bob" || pass != "secret" {
					t.Errorf("basic auth = %q %q %v", user, pass, ok)
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearAuthEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tc.check(t, r)
				_, _ = w.Write([]byte(sampleAdvertisement()))
			}))
			defer ts.Close()

			u := strings.Replace(ts.URL, "http://", "http://"+tc.url, 1) + "/r.git"
			c, err := NewClient(u)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := c.ListRefs(context.Background()); err != nil {
				t.Fatalf("ListRefs: %v", err)
			}
		})
	}
}

func TestClientNotFound(t *testing.T) {
	clearAuthEnv(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "repository not found", http.StatusNotFound)
	}))
	defer ts.Close()

	c, err := NewClientWithOptions(ts.URL+"/missing.git", ClientOptions{MaxAttempts: 3, Backoff: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.ListRefs(context.Background())
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("ListRefs err = %v, want status 404", err)
	}
}
