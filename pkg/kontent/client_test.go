package kontent

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("env-1", "key-1",
		WithBaseURL(srv.URL),
		WithRetry(3, time.Millisecond))
}

func TestClientSendsAuthHeader(t *testing.T) {
	var gotAuth string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/projects/env-1/items/codename/article_one", r.URL.Path)
		fmt.Fprint(w, `{"id":"item-1","codename":"article_one"}`)
	}))

	item, err := client.ViewContentItemByCodename(context.Background(), "article_one")
	require.NoError(t, err)
	assert.Equal(t, "Bearer key-1", gotAuth)
	assert.Equal(t, "item-1", item.Id)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"id":"item-1"}`)
	}))

	_, err := client.ViewContentItemByCodename(context.Background(), "article_one")
	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClientRetriesRateExceeded(t *testing.T) {
	var attempts atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error_code":10000,"message":"API rate limit exceeded"}`)
			return
		}
		fmt.Fprint(w, `{"id":"item-1"}`)
	}))

	_, err := client.ViewContentItemByCodename(context.Background(), "article_one")
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClientStopsAfterMaxAttempts(t *testing.T) {
	var attempts atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.ViewContentItemByCodename(context.Background(), "article_one")
	require.Error(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"message":"The requested content item was not found"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, IsNotFound(err))
			},
		},
		{
			name:   "validation failure",
			status: http.StatusBadRequest,
			body:   `{"error_code":5,"message":"Related content validation failed"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, IsValidationFailure(err))
				assert.ErrorContains(t, err, "Related content validation failed")
			},
		},
		{
			name:   "forbidden with error code",
			status: http.StatusForbidden,
			body:   `{"error_code":3,"message":"Insufficient permissions"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "Insufficient permissions")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))

			_, err := client.ViewContentItemByCodename(context.Background(), "article_one")
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, int32(1), attempts.Load(), "client errors must not be retried")
		})
	}
}

func TestListCollectionsFollowsContinuation(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-continuation") == "token-1" {
			fmt.Fprint(w, `{"collections":[{"id":"c-2","codename":"second"}],"pagination":{"continuation_token":""}}`)
			return
		}
		fmt.Fprint(w, `{"collections":[{"id":"c-1","codename":"first"}],"pagination":{"continuation_token":"token-1"}}`)
	}))

	collections, err := client.ListCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, collections, 2)
	assert.Equal(t, "first", collections[0].Codename)
	assert.Equal(t, "second", collections[1].Codename)
}

func TestListContentTypesFlattenedExpandsSnippets(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/projects/env-1/types":
			fmt.Fprint(w, `{"types":[{
				"id":"type-1","name":"Article","codename":"article",
				"elements":[
					{"id":"el-title","codename":"title","type":"text"},
					{"id":"el-meta","codename":"metadata","type":"snippet","snippet":{"id":"snip-1"}}
				]}],"pagination":{}}`)
		case "/projects/env-1/snippets":
			fmt.Fprint(w, `{"snippets":[{
				"id":"snip-1","name":"Metadata","codename":"metadata",
				"elements":[
					{"id":"el-meta-title","codename":"meta_title","type":"text"},
					{"id":"el-meta-desc","codename":"meta_description","type":"text"}
				]}],"pagination":{}}`)
		default:
			http.NotFound(w, r)
		}
	}))

	types, err := client.ListContentTypesFlattened(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)

	var codenames []string
	for _, el := range types[0].Elements {
		codenames = append(codenames, el.Codename)
	}
	assert.Equal(t, []string{"title", "meta_title", "meta_description"}, codenames)
}

func TestUploadBinaryFile(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/projects/env-1/files/hero.png", r.URL.Path)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		fmt.Fprint(w, `{"id":"file-1","type":"internal"}`)
	}))

	ref, err := client.UploadBinaryFile(context.Background(), BinaryFile{
		Filename:    "hero.png",
		ContentType: "image/png",
		Data:        []byte("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "file-1", ref.Id)
	assert.Equal(t, "internal", ref.Type)
}

func TestDownloadFileRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "binary-data")
	}))
	defer srv.Close()

	client := NewClient("env-1", "key-1", WithRetry(3, time.Millisecond))
	data, err := client.DownloadFile(context.Background(), srv.URL+"/asset.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("binary-data"), data)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transport error", fmt.Errorf("connection refused"), true},
		{"plain 500", &APIError{StatusCode: 500}, true},
		{"plain 429", &APIError{StatusCode: 429}, true},
		{"rate exceeded code", &APIError{StatusCode: 429, ErrorCode: ErrorCodeRateExceeded}, true},
		{"coded 400", &APIError{StatusCode: 400, ErrorCode: 5}, false},
		{"404", &APIError{StatusCode: 404}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}
