package gcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGCSURI(t *testing.T) {
	bucket, object, err := ParseGCSURI("gs://study-pdfs/uploads/physics.pdf")
	require.NoError(t, err)
	assert.Equal(t, "study-pdfs", bucket)
	assert.Equal(t, "uploads/physics.pdf", object)

	for _, bad := range []string{"https://x/y", "gs://", "gs://bucket", "gs://bucket/", "gs:///obj"} {
		_, _, err := ParseGCSURI(bad)
		assert.Error(t, err, bad)
	}
}
