package dispatch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idconnect/idconnect/pkg/errors"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClientBuilder().WithPlaintextHTTP(true).Build()
	require.NoError(t, err)
	return client
}

func TestDoGetParamsInQuery(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	d := New(WithHTTPClient(testClient(t)))
	resp, err := d.Do(context.Background(), Request{
		URL:    srv.URL + "/me",
		Params: map[string]string{"fields": "id,name"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, gotQuery, "fields=id%2Cname")
	assert.Equal(t, true, resp.Data.Get("ok"))
}

func TestDoPostParamsAsForm(t *testing.T) {
	t.Parallel()

	var gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	d := New(WithHTTPClient(testClient(t)))
	_, err := d.Do(context.Background(), Request{
		URL:    srv.URL,
		Method: http.MethodPost,
		Params: map[string]string{"status": "hello world"},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "status=hello+world", gotBody)
}

func TestDoMultipart(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "pic.png", r.FormValue("name"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	d := New(WithHTTPClient(testClient(t)))
	_, err := d.Do(context.Background(), Request{
		URL:       srv.URL,
		Method:    http.MethodPost,
		Params:    map[string]string{"name": "pic.png"},
		Multipart: true,
	})
	require.NoError(t, err)
}

func TestDoHeaderMergeCallerWins(t *testing.T) {
	t.Parallel()

	var gotAccept, gotExtra string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotExtra = r.Header.Get("X-Extra")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	d := New(
		WithHTTPClient(testClient(t)),
		WithDefaultHeaders(map[string]string{
			"Accept":  "application/xml",
			"X-Extra": "kept",
		}),
	)
	_, err := d.Do(context.Background(), Request{
		URL:     srv.URL,
		Headers: map[string]string{"Accept": "application/json"},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotAccept, "per-call header must win over the default")
	assert.Equal(t, "kept", gotExtra, "unconflicted defaults must survive the merge")
}

func TestDoEmptyHeaderSuppressesDefault(t *testing.T) {
	t.Parallel()

	var gotExtra []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotExtra = r.Header.Values("X-Extra")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	d := New(
		WithHTTPClient(testClient(t)),
		WithDefaultHeaders(map[string]string{"X-Extra": "on-by-default"}),
	)
	_, err := d.Do(context.Background(), Request{
		URL:     srv.URL,
		Headers: map[string]string{"X-Extra": ""},
	})
	require.NoError(t, err)

	assert.Empty(t, gotExtra, "an explicit empty value must blank out the default header")
}

func TestDoBearerEvidence(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	d := New(WithHTTPClient(testClient(t)))
	_, err := d.Do(context.Background(), Request{
		URL:      srv.URL,
		Evidence: BearerToken{Token: "tok-123"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestDoQueryTokenEvidence(t *testing.T) {
	t.Parallel()

	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("oauth_token")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	d := New(WithHTTPClient(testClient(t)))
	_, err := d.Do(context.Background(), Request{
		URL:      srv.URL,
		Evidence: QueryToken{Name: "oauth_token", Token: "tok-456"},
	})
	require.NoError(t, err)

	assert.Equal(t, "tok-456", gotToken)
}

type headerSigner struct{}

func (headerSigner) Sign(req *http.Request) error {
	req.Header.Set("Authorization", `OAuth oauth_signature="sig"`)
	return nil
}

func TestDoSignedEvidence(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	d := New(WithHTTPClient(testClient(t)))
	_, err := d.Do(context.Background(), Request{
		URL:      srv.URL,
		Evidence: SignedEvidence{Signer: headerSigner{}},
	})
	require.NoError(t, err)

	assert.Contains(t, gotAuth, "oauth_signature")
}

func TestDoNonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
	}))
	defer srv.Close()

	d := New(WithHTTPClient(testClient(t)))
	resp, err := d.Do(context.Background(), Request{URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.IsProtocolViolation(err))
	assert.Contains(t, err.Error(), "401")

	// The decoded body still comes back for diagnostics.
	require.NotNil(t, resp)
	assert.Equal(t, "invalid_token", resp.Data.Str("error"))
}

func TestDoStatusValidationDisabled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	d := New(WithHTTPClient(testClient(t)), WithoutStatusValidation())
	resp, err := d.Do(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestDoTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	srv.Close()

	d := New(WithHTTPClient(testClient(t)))
	_, err := d.Do(context.Background(), Request{URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))
	assert.False(t, errors.IsProtocolViolation(err))
}

func TestDoInvalidURL(t *testing.T) {
	t.Parallel()

	d := New(WithHTTPClient(testClient(t)))
	_, err := d.Do(context.Background(), Request{URL: "not a url"})
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
}

func TestDefaultClientRejectsPlainHTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	d := New()
	_, err := d.Do(context.Background(), Request{URL: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTPS")
}

func TestClientConfigureStopsRedirects(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/end", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := testClient(t)
	require.NoError(t, client.Configure(TransportOptions{FollowRedirects: false}))

	d := New(WithHTTPClient(client), WithoutStatusValidation())
	resp, err := d.Do(context.Background(), Request{URL: srv.URL + "/start"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasSuffix(resp.Headers.Get("Location"), "/end"))
}
