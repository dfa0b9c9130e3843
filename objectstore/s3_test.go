package objectstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *S3Store {
	client := s3.New(s3.Options{
		Region:      "eu-west-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
	})
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  "flipbook-pages",
		region:  "eu-west-1",
	}
}

func TestURL(t *testing.T) {
	s := newTestStore()
	assert.Equal(t, "https://flipbook-pages.s3.eu-west-1.amazonaws.com/pages/3/a.png", s.URL("pages/3/a.png"))
}

func TestURLEscapesSegments(t *testing.T) {
	s := newTestStore()
	assert.Equal(t,
		"https://flipbook-pages.s3.eu-west-1.amazonaws.com/pages/3/cover%20page%231.png",
		s.URL("pages/3/cover page#1.png"))
}

func TestPresignGet(t *testing.T) {
	s := newTestStore()

	url, err := s.PresignGet(context.Background(), "pages/3/a.png", 10*time.Minute)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://flipbook-pages.s3.eu-west-1.amazonaws.com/pages/3/a.png?"), url)
	assert.Contains(t, url, "X-Amz-Expires=600")
	assert.Contains(t, url, "X-Amz-Signature=")
}
