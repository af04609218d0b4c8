package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.PostForm.Get("secret") != "sekrit" {
			t.Errorf("unexpected secret %q", r.PostForm.Get("secret"))
		}
		if r.PostForm.Get("response") != "token-123" {
			t.Errorf("unexpected token %q", r.PostForm.Get("response"))
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	svc := NewServiceWithURL("sekrit", server.URL)
	ok, err := svc.Verify(context.Background(), "token-123")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Error("expected success")
	}
}

func TestVerifyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer server.Close()

	svc := NewServiceWithURL("sekrit", server.URL)
	ok, err := svc.Verify(context.Background(), "bad-token")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Error("rejected token must not verify")
	}
}

func TestVerifyEmptyTokenSkipsNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	svc := NewServiceWithURL("sekrit", server.URL)
	ok, err := svc.Verify(context.Background(), "")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Error("empty token must fail verification")
	}
	if called {
		t.Error("empty token must not reach the endpoint")
	}
}

func TestVerifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewServiceWithURL("sekrit", server.URL)
	if _, err := svc.Verify(context.Background(), "token"); err == nil {
		t.Error("expected an error on non-200 response")
	}
}

func TestDisabledAcceptsEverything(t *testing.T) {
	ok, err := Disabled{}.Verify(context.Background(), "")
	if err != nil || !ok {
		t.Errorf("Disabled verifier should accept, got ok=%v err=%v", ok, err)
	}
}
