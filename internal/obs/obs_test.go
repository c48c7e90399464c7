package obs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFieldsEmpty(t *testing.T) {
	assert.Equal(t, "", formatFields(nil))
	assert.Equal(t, "", formatFields(Fields{}))
}

func TestFormatFieldsSingleEntry(t *testing.T) {
	assert.Equal(t, "{key_tonic=5}", formatFields(Fields{"key_tonic": 5}))
}

func TestInitWithEmptyDSNIsNoop(t *testing.T) {
	require.NoError(t, Init(""))
}
