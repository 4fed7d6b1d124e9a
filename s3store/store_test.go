package s3store_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/s3store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
}

// fakeS3 answers path-style S3 requests with canned responses.
type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Body: string(body)})
	f.mu.Unlock()
	f.respond(w, r)
}

func (f *fakeS3) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeS3) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newStore(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*s3store.Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{respond: respond}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := s3store.New(s3store.Config{
		Bucket:    "test-bucket",
		Region:    "us-east-1",
		AccessKey: "test-access-key",
		SecretKey: "test-secret-key",
		Endpoint:  srv.URL,
		PathStyle: true,
	})
	require.NoError(t, err)
	return store, fake
}

func writeXML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		store, err := s3store.New(s3store.Config{
			Bucket:    "test-bucket",
			Region:    "eu-west-1",
			AccessKey: "test-access-key",
			SecretKey: "test-secret-key",
		})
		require.NoError(t, err)
		require.NotNil(t, store)
		assert.Equal(t, "test-bucket", store.Bucket())
	})

	t.Run("missing bucket", func(t *testing.T) {
		t.Parallel()
		store, err := s3store.New(s3store.Config{Region: "eu-west-1", AccessKey: "a", SecretKey: "b"})
		require.ErrorIs(t, err, s3store.ErrInvalidConfig)
		require.Nil(t, store)
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()
		_, err := s3store.New(s3store.Config{Bucket: "b", Region: "eu-west-1"})
		require.ErrorIs(t, err, s3store.ErrInvalidConfig)
	})

	t.Run("missing region", func(t *testing.T) {
		t.Parallel()
		_, err := s3store.New(s3store.Config{Bucket: "b", AccessKey: "a", SecretKey: "b"})
		require.ErrorIs(t, err, s3store.ErrInvalidConfig)
	})
}

func TestStore_PresignGet(t *testing.T) {
	t.Parallel()

	store, err := s3store.New(s3store.Config{
		Bucket:    "test-bucket",
		Region:    "us-east-1",
		AccessKey: "test-access-key",
		SecretKey: "test-secret-key",
		Endpoint:  "http://localhost:9000",
		PathStyle: true,
	})
	require.NoError(t, err)

	raw, err := store.PresignGet(context.Background(), "alice/docs/a.txt", 300*time.Second)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/test-bucket/alice/docs/a.txt", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.True(t, strings.HasPrefix(u.Query().Get("X-Amz-Credential"), "test-access-key/"))
}

func TestStore_ListObjects(t *testing.T) {
	t.Parallel()

	store, fake := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeXML(w, http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>test-bucket</Name>
  <Prefix>alice/a.txt</Prefix>
  <KeyCount>1</KeyCount>
  <MaxKeys>1</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents>
    <Key>alice/a.txt</Key>
    <Size>3</Size>
    <ETag>"abc"</ETag>
    <LastModified>2024-01-02T03:04:05.000Z</LastModified>
  </Contents>
</ListBucketResult>`)
	})

	entries, err := store.ListObjects(context.Background(), "alice/a.txt", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice/a.txt", entries[0].Key)
	assert.Equal(t, int64(3), entries[0].Size)
	assert.Equal(t, `"abc"`, entries[0].ETag)
	assert.Equal(t, 2024, entries[0].LastModified.Year())

	req := fake.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/test-bucket", req.Path)
	assert.Equal(t, "alice/a.txt", req.Query.Get("prefix"))
	assert.Equal(t, "1", req.Query.Get("max-keys"))
	assert.Equal(t, "2", req.Query.Get("list-type"))
}

func TestStore_ListObjects_Empty(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeXML(w, http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>test-bucket</Name>
  <KeyCount>0</KeyCount>
  <MaxKeys>1</MaxKeys>
  <IsTruncated>false</IsTruncated>
</ListBucketResult>`)
	})

	entries, err := store.ListObjects(context.Background(), "alice/missing", 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_GetObjectTagging(t *testing.T) {
	t.Parallel()

	store, fake := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeXML(w, http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?>
<Tagging xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <TagSet>
    <Tag><Key>project</Key><Value>apollo</Value></Tag>
  </TagSet>
</Tagging>`)
	})

	tags, err := store.GetObjectTagging(context.Background(), "alice/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []bucketgate.Tag{{Key: "project", Value: "apollo"}}, tags)

	req := fake.last()
	assert.Equal(t, "/test-bucket/alice/a.txt", req.Path)
	assert.True(t, req.Query.Has("tagging"))
}

func TestStore_PutObjectTagging(t *testing.T) {
	t.Parallel()

	store, fake := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	err := store.PutObjectTagging(context.Background(), "alice/a.txt", []bucketgate.Tag{{Key: "project", Value: "apollo"}})
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.True(t, req.Query.Has("tagging"))
	assert.Contains(t, req.Body, "<Key>project</Key>")
	assert.Contains(t, req.Body, "<Value>apollo</Value>")
}

func TestStore_PutObject(t *testing.T) {
	t.Parallel()

	store, fake := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	})

	err := store.PutObject(context.Background(), "alice/a.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/test-bucket/alice/a.txt", req.Path)
	assert.Equal(t, "hello", req.Body)
}

func TestStore_DeleteObject(t *testing.T) {
	t.Parallel()

	store, fake := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, store.DeleteObject(context.Background(), "alice/a.txt"))
	assert.Equal(t, http.MethodDelete, fake.last().Method)
	assert.Equal(t, "/test-bucket/alice/a.txt", fake.last().Path)
}

func TestStore_ErrorMapping(t *testing.T) {
	t.Parallel()

	t.Run("no such key", func(t *testing.T) {
		t.Parallel()
		store, _ := newStore(t, func(w http.ResponseWriter, r *http.Request) {
			writeXML(w, http.StatusNotFound, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
		})

		_, err := store.GetObjectTagging(context.Background(), "alice/a.txt")
		assert.ErrorIs(t, err, bucketgate.ErrNotFound)
	})

	t.Run("access denied", func(t *testing.T) {
		t.Parallel()
		store, _ := newStore(t, func(w http.ResponseWriter, r *http.Request) {
			writeXML(w, http.StatusForbidden, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
		})

		err := store.DeleteObject(context.Background(), "alice/a.txt")
		assert.ErrorIs(t, err, s3store.ErrAccessDenied)
	})

	t.Run("server error is not retried", func(t *testing.T) {
		t.Parallel()
		store, fake := newStore(t, func(w http.ResponseWriter, r *http.Request) {
			writeXML(w, http.StatusInternalServerError, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>InternalError</Code><Message>We encountered an internal error.</Message></Error>`)
		})

		_, err := store.ListObjects(context.Background(), "alice/", 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, bucketgate.ErrNotFound)
		assert.Equal(t, 1, fake.count())
	})
}
