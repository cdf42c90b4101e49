// Copyright 2025 Certen Protocol

package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/certen/ots-engine/pkg/ots"
)

func TestSubmitParsesCommitmentTree(t *testing.T) {
	wantTree := ots.NewTree().AddLeaf(ots.Pending("https://upstream.example.com"))
	body, err := ots.WriteBareTree(wantTree)
	if err != nil {
		t.Fatalf("WriteBareTree: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/digest" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))
	defer srv.Close()

	c := New(5*time.Second, nil)
	tree, err := c.Submit(context.Background(), srv.URL, []byte{0x01, 0x02, 0x03})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if tree.LeafCount() != 1 {
		t.Errorf("leaf count = %d, want 1", tree.LeafCount())
	}
}

func TestGetTimestampPendingReturnsErrPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(5*time.Second, nil)
	_, err := c.GetTimestamp(context.Background(), srv.URL, []byte{0xaa})
	if !errors.Is(err, ErrPending) {
		t.Errorf("err = %v, want wrapping ErrPending", err)
	}
}

func TestSubmitNon200IsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("calendar overloaded"))
	}))
	defer srv.Close()

	c := New(5*time.Second, nil)
	_, err := c.Submit(context.Background(), srv.URL, []byte{0x01})
	var netErr *ots.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want *ots.NetworkError", err)
	}
	if netErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", netErr.Status)
	}
}
