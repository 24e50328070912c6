package netx

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadToPresignedURL(t *testing.T) {
	file := []byte("hello, s3")
	ctx := context.Background()

	t.Run("success 200 OK", func(t *testing.T) {
		var gotBody []byte
		var gotCT, gotMethod string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		err := UploadToPresignedURL(ctx, ts.URL+"/bucket/key?X-Amz-Signature=abc", "text/plain", bytes.NewReader(file), int64(len(file)))
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "text/plain", gotCT)
		assert.Equal(t, file, gotBody)
	})

	t.Run("default content type", func(t *testing.T) {
		var gotCT string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCT = r.Header.Get("Content-Type")
		}))
		defer ts.Close()

		require.NoError(t, UploadToPresignedURL(ctx, ts.URL, "", bytes.NewReader(file), int64(len(file))))
		assert.Equal(t, "application/octet-stream", gotCT)
	})

	t.Run("non-200 -> error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer ts.Close()

		err := UploadToPresignedURL(ctx, ts.URL, "", bytes.NewReader(file), int64(len(file)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "upload failed: 403")
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		err := UploadToPresignedURL(ctx, ts.URL, "", bytes.NewReader(file), int64(len(file)))
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "upload failed")
	})
}

func TestDownloadFromPresignedURL(t *testing.T) {
	ctx := context.Background()

	t.Run("copies body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			_, _ = w.Write([]byte("payload"))
		}))
		defer ts.Close()

		var buf bytes.Buffer
		n, err := DownloadFromPresignedURL(ctx, ts.URL, &buf)
		require.NoError(t, err)
		assert.EqualValues(t, 7, n)
		assert.Equal(t, "payload", buf.String())
	})

	t.Run("expired link", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("Request has expired"))
		}))
		defer ts.Close()

		var buf bytes.Buffer
		_, err := DownloadFromPresignedURL(ctx, ts.URL, &buf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "download failed: 403")
		assert.Zero(t, buf.Len())
	})
}
