package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Farouk858/product-radar/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	c := New(config.WebhookConfig{})
	require.Nil(t, c)
	require.NoError(t, c.Send(context.Background(), &Event{Type: EventDigestCompleted}))
}

func TestSend_SignsBody(t *testing.T) {
	var (
		gotSig  string
		gotBody []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(config.WebhookConfig{URL: srv.URL, Secret: "s3cret", Attempts: 1, Timeout: time.Second})
	event := &Event{Type: EventDigestCompleted, RunID: "2026-10-17", Timestamp: 1, Data: map[string]int{"new": 2}}
	require.NoError(t, c.Send(context.Background(), event))

	require.Equal(t, "sha256="+Sign("s3cret", gotBody), gotSig)

	var decoded Event
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	require.Equal(t, EventDigestCompleted, decoded.Type)
	require.Equal(t, "2026-10-17", decoded.RunID)
}

func TestSend_NoSecretNoSignature(t *testing.T) {
	var sig atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sig.Store(r.Header.Get(SignatureHeader))
	}))
	defer srv.Close()

	c := New(config.WebhookConfig{URL: srv.URL, Attempts: 1, Timeout: time.Second})
	require.NoError(t, c.Send(context.Background(), &Event{Type: EventDigestCompleted}))
	require.Equal(t, "", sig.Load())
}

func TestSend_Retries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(config.WebhookConfig{URL: srv.URL, Attempts: 3, Timeout: time.Second})
	c.delays = []time.Duration{time.Millisecond}

	require.NoError(t, c.Send(context.Background(), &Event{Type: EventDigestCompleted}))
	require.Equal(t, int32(2), calls.Load())
}

func TestSend_Exhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(config.WebhookConfig{URL: srv.URL, Attempts: 2, Timeout: time.Second})
	c.delays = []time.Duration{time.Millisecond}

	err := c.Send(context.Background(), &Event{Type: EventDigestCompleted})
	require.ErrorContains(t, err, "status 500")
	require.Equal(t, int32(2), calls.Load())
}
