package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("demo", "key-123", "secret-xyz")
	c.BaseURL = srv.URL
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

func TestSign_SortsAndSkipsEmpty(t *testing.T) {
	got := Sign(map[string]string{
		"timestamp": "1700000000",
		"folder":    "shares",
		"public_id": "",
	}, "secret")

	sum := sha1.Sum([]byte("folder=shares&timestamp=1700000000secret"))
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestClient_Upload_SendsSignedMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/demo/image/upload" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("api_key"); got != "key-123" {
			t.Errorf("expected api_key=key-123, got %q", got)
		}
		if got := r.FormValue("folder"); got != "shares" {
			t.Errorf("expected folder=shares, got %q", got)
		}
		want := Sign(map[string]string{
			"folder":    "shares",
			"public_id": "abc",
			"timestamp": "1700000000",
		}, "secret-xyz")
		if got := r.FormValue("signature"); got != want {
			t.Errorf("signature mismatch: want %s, got %s", want, got)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("file part missing: %v", err)
			return
		}
		b, _ := io.ReadAll(f)
		if string(b) != "image-bytes" {
			t.Errorf("unexpected file content %q", b)
		}
		_, _ = w.Write([]byte(`{"public_id":"shares/abc","secure_url":"https://res.example/shares/abc.jpg"}`))
	})

	res, err := c.Upload(context.Background(), UploadParams{Folder: "shares", PublicID: "abc", Filename: "abc.jpg"}, strings.NewReader("image-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PublicID != "shares/abc" {
		t.Errorf("expected public_id shares/abc, got %q", res.PublicID)
	}
	if res.SecureURL != "https://res.example/shares/abc.jpg" {
		t.Errorf("unexpected secure_url %q", res.SecureURL)
	}
}

func TestClient_Upload_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid image file"}}`))
	})

	_, err := c.Upload(context.Background(), UploadParams{}, strings.NewReader("x"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "Invalid image file" {
		t.Errorf("unexpected api error %+v", apiErr)
	}
}

func TestClient_Destroy_NotFoundIsSuccess(t *testing.T) {
	for _, result := range []string{"ok", "not found"} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/demo/image/destroy" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			_ = r.ParseForm()
			if got := r.PostFormValue("public_id"); got != "shares/abc" {
				t.Errorf("expected public_id=shares/abc, got %q", got)
			}
			_, _ = w.Write([]byte(`{"result":"` + result + `"}`))
		})
		if err := c.Destroy(context.Background(), "shares/abc"); err != nil {
			t.Errorf("result %q: unexpected error %v", result, err)
		}
	}
}

func TestClient_Destroy_UnexpectedResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"error"}`))
	})
	if err := c.Destroy(context.Background(), "shares/abc"); err == nil {
		t.Error("expected error for unexpected result")
	}
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient("", "", "")
	if _, err := c.Upload(context.Background(), UploadParams{}, strings.NewReader("x")); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured from Upload, got %v", err)
	}
	if err := c.Destroy(context.Background(), "id"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured from Destroy, got %v", err)
	}
}
