// Package features provides shared test utilities for UI feature tests.
package features

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/session"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/testutil"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/features/common"
	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/ui/notifier"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Session      *session.Session
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
}

// SetupTestFixture opens a session over an in-memory database with the given
// statements applied.
func SetupTestFixture(t *testing.T, statements ...string) *TestFixture {
	t.Helper()
	ctx := context.Background()

	sess := session.New(session.Config{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, sess.Open(ctx))
	t.Cleanup(func() { _ = sess.Close() })

	for _, stmt := range statements {
		_, err := sess.RunScript(ctx, stmt)
		require.NoError(t, err)
	}

	return &TestFixture{
		Session:      sess,
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
	}
}

// SignalsRequest builds a Datastar request carrying signals: as the
// "datastar" query parameter for GET, as a JSON body otherwise.
func SignalsRequest(t *testing.T, method, target string, signals any) *http.Request {
	t.Helper()

	payload, err := json.Marshal(signals)
	require.NoError(t, err)

	if method == http.MethodGet {
		u, err := url.Parse(target)
		require.NoError(t, err)
		q := u.Query()
		q.Set("datastar", string(payload))
		u.RawQuery = q.Encode()
		return httptest.NewRequest(method, u.String(), nil)
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	return RequestWithPathParams(r, key, value)
}

// RequestWithPathParams wraps a request with several chi URL params given as
// key, value pairs.
func RequestWithPathParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// UploadRequest builds a multipart POST carrying one file under field.
func UploadRequest(t *testing.T, target, field, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// FlashFrom replays the cookies set on rec into a fresh request and pops the
// pending flash banner.
func FlashFrom(t *testing.T, rec *httptest.ResponseRecorder, store sessions.Store) common.BannerData {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return common.PopFlash(httptest.NewRecorder(), req, store)
}
