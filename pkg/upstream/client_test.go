package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/nilecommerce/admin-service/pkg/errors"
	"github.com/nilecommerce/admin-service/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseDelay(time.Millisecond)}, opts...)
	client, err := NewClient("merchants", baseURL, "test-key", testLogger(), opts...)
	require.NoError(t, err)
	return client
}

func TestGetDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/all-stores", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"stores":[{"id":"s1"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var out struct {
		Stores []struct {
			ID string `json:"id"`
		} `json:"stores"`
	}
	query := url.Values{"limit": {"10"}}
	require.NoError(t, client.Get(context.Background(), "/all-stores", query, &out))
	require.Len(t, out.Stores, 1)
	assert.Equal(t, "s1", out.Stores[0].ID)
}

func TestRetriesTransientStatusThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, client.Get(context.Background(), "/health", nil, &out))
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetriesExhaustedSurfacesUpstreamError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"backend down"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, WithMaxAttempts(3))

	err := client.Get(context.Background(), "/all-orders", nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())

	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeUpstream, domainErr.Code())
	assert.Equal(t, http.StatusBadGateway, domainErr.UpstreamStatus())
	assert.Equal(t, "backend down", domainErr.Details())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"store not found"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.Get(context.Background(), "/store/missing", nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeNotFound, domainErr.Code())
	assert.Equal(t, http.StatusNotFound, domainErr.UpstreamStatus())
}

func TestRateLimitAndTimeoutStatusesAreRetried(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusRequestTimeout} {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(status)
				return
			}
			w.Write([]byte(`{}`))
		}))

		client := newTestClient(t, server.URL)
		err := client.Get(context.Background(), "/orders", nil, nil)
		server.Close()

		assert.NoError(t, err, "status %d", status)
		assert.Equal(t, int32(2), calls.Load(), "status %d", status)
	}
}

func TestNetworkErrorRetriedAndClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	client := newTestClient(t, server.URL, WithMaxAttempts(2))

	err := client.Get(context.Background(), "/all-stores", nil, nil)
	require.Error(t, err)

	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeUpstream, domainErr.Code())
	assert.Zero(t, domainErr.UpstreamStatus())
}

func TestPostSendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		payload, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"merchantId":"m1"}`, string(payload))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"o1"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var out struct {
		ID string `json:"id"`
	}
	body := map[string]string{"merchantId": "m1"}
	require.NoError(t, client.Post(context.Background(), "/orders", body, &out))
	assert.Equal(t, "o1", out.ID)
}

func TestSetAPIKeyAndBaseURL(t *testing.T) {
	var gotAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, "http://127.0.0.1:1/stale")
	require.NoError(t, client.SetBaseURL(server.URL+"/"))
	client.SetAPIKey("rotated-key")

	require.NoError(t, client.Get(context.Background(), "/ping", nil, nil))
	assert.Equal(t, "Bearer rotated-key", gotAuth.Load())
	assert.Equal(t, server.URL, client.BaseURL())

	assert.Error(t, client.SetBaseURL("   "))
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("orders", "", "key", testLogger())
	assert.ErrorIs(t, err, errBaseURLRequired)

	_, err = NewClient("orders", "http://localhost", "key", nil)
	assert.ErrorIs(t, err, errLoggerRequired)
}
