package http_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/sagarc03/bucketgate"
	gatehttp "github.com/sagarc03/bucketgate/http"
	"github.com/sagarc03/bucketgate/keybackend"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockService is a mock implementation of http.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Upload(ctx context.Context, owner string, req bucketgate.UploadRequest, body io.Reader) (bucketgate.UploadResult, error) {
	args := m.Called(ctx, owner, req, body)
	return args.Get(0).(bucketgate.UploadResult), args.Error(1)
}

func (m *MockService) PresignDownload(ctx context.Context, owner, rel string) (bucketgate.DownloadResult, error) {
	args := m.Called(ctx, owner, rel)
	return args.Get(0).(bucketgate.DownloadResult), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, owner, rel string) (string, error) {
	args := m.Called(ctx, owner, rel)
	return args.String(0), args.Error(1)
}

func testAuthenticator() bucketgate.Authenticator {
	return keybackend.NewMapAuthenticator([]bucketgate.Credential{
		{Username: "alice", Password: "s3cret"},
		{Username: "bob", Password: "hunter2"},
	})
}

func newTestHandler(t *testing.T, mutate ...func(*gatehttp.HandlerConfig)) (http.Handler, *MockService) {
	t.Helper()

	cfg := &gatehttp.HandlerConfig{Authenticator: testAuthenticator()}
	for _, m := range mutate {
		m(cfg)
	}

	service := new(MockService)
	return gatehttp.NewHandler(cfg, service).Router(), service
}

// multipartBody builds a multipart form with a single "file" part.
func multipartBody(t *testing.T, field, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func newUploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()

	body, ct := multipartBody(t, "file", filename, "", content)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	req.SetBasicAuth("alice", "s3cret")
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
