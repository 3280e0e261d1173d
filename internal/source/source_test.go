package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xlsx", "a.csv", "notes.txt", "~$b.xlsx", "c.XLS"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xlsx"), 0o750))

	src := NewFS(dir)
	objs, err := src.List(context.Background())
	require.NoError(t, err)

	var names []string
	for _, o := range objs {
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"a.csv", "b.xlsx", "c.XLS"}, names)

	rc, err := src.Open(context.Background(), objs[0].Key)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "x", string(b))
}

func TestFSListMissingDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "nope")).List(context.Background())
	assert.Error(t, err)
}

// fakeS3 serves ListObjectsV2 and GetObject for path-style requests.
type fakeS3 struct{ objects map[string][]byte }

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		prefix := req.URL.Query().Get("prefix")
		var keys []string
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2025-01-01T00:00:00Z</LastModified></Contents>",
				k, len(f.objects[k]))
		}
		b.WriteString("</ListBucketResult>")
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(b.String())),
			Header: http.Header{"Content-Type": {"application/xml"}}}, nil
	}
	if req.Method == http.MethodGet {
		if body, ok := f.objects[key]; ok {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body)),
				ContentLength: int64(len(body)),
				Header:        http.Header{"Content-Length": {fmt.Sprint(len(body))}}}, nil
		}
	}
	return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
}

func newFakeS3(t *testing.T, objects map[string][]byte, prefix string) *S3 {
	t.Helper()
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: &fakeS3{objects: objects}}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return NewS3WithClient(client, "reports", prefix)
}

func TestS3ListAndOpen(t *testing.T) {
	src := newFakeS3(t, map[string][]byte{
		"2025/alagoas.xlsx": []byte("xlsx"),
		"2025/bahia.csv":    []byte("a;b"),
		"2025/readme.md":    []byte("#"),
		"2024/old.xlsx":     []byte("old"),
	}, "2025/")

	objs, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "2025/alagoas.xlsx", objs[0].Key)
	assert.Equal(t, "alagoas.xlsx", objs[0].Name)
	assert.Equal(t, int64(4), objs[0].Size)

	rc, err := src.Open(context.Background(), "2025/bahia.csv")
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "a;b", string(b))

	_, err = src.Open(context.Background(), "2025/missing.xlsx")
	assert.Error(t, err)
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{})
	assert.Error(t, err)
}
