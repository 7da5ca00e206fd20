package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONScanBytesAndString(t *testing.T) {
	var j JSON
	require.NoError(t, j.Scan([]byte(`{"first": 50}`)))
	assert.Equal(t, 50.0, j["first"])

	require.NoError(t, j.Scan(`{"second": 20}`))
	assert.Equal(t, 20.0, j["second"])
}

func TestJSONScanNil(t *testing.T) {
	j := JSON{"stale": true}
	require.NoError(t, j.Scan(nil))
	assert.Nil(t, j)
}

func TestJSONScanUnsupportedType(t *testing.T) {
	var j JSON
	assert.Error(t, j.Scan(42))
}

func TestJSONValueNilStoresNull(t *testing.T) {
	var j JSON
	v, err := j.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
