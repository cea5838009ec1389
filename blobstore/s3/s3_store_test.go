package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkoehler/ansel/blobstore"
)

// stubClient serves canned objects and records requested keys. Range
// requests get the whole object back with a matching ContentRange, which is
// enough for the downloader's single-part path.
type stubClient struct {
	mu      sync.Mutex
	objects map[string][]byte
	keys    []string
}

func (c *stubClient) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(params.Key)
	c.mu.Lock()
	c.keys = append(c.keys, key)
	data, ok := c.objects[key]
	c.mu.Unlock()
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	n := int64(len(data))
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(n),
		ContentRange:  aws.String(fmt.Sprintf("bytes 0-%d/%d", n-1, n)),
	}, nil
}

func (c *stubClient) requested() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

func TestStoreOpen(t *testing.T) {
	ctx := context.Background()
	client := &stubClient{objects: map[string][]byte{
		"gallery/thumb/a.jpg": []byte("thumb-bytes"),
	}}
	s := NewStore(client, "photos", "gallery")

	rc, err := s.Open(ctx, "thumb/a.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("thumb-bytes"), data)
	assert.Equal(t, []string{"gallery/thumb/a.jpg"}, client.requested())

	_, err = s.Open(ctx, "thumb/missing.jpg")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStoreDownload(t *testing.T) {
	ctx := context.Background()
	original := bytes.Repeat([]byte("0123456789abcdef"), 4096)
	client := &stubClient{objects: map[string][]byte{
		"gallery/full/a.jpg": original,
	}}
	s := NewStore(client, "photos", "gallery")

	data, err := s.Download(ctx, "full/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, original, data)
	assert.Contains(t, client.requested(), "gallery/full/a.jpg")

	_, err = s.Download(ctx, "full/missing.jpg")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStoreSatisfiesBulkStore(t *testing.T) {
	var s any = NewStore(&stubClient{}, "photos", "")
	_, ok := s.(blobstore.BulkStore)
	assert.True(t, ok)
}
