package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderBootstrapSQL(t *testing.T) {
	ddl, err := renderBootstrapSQL(768)
	require.NoError(t, err)
	require.Contains(t, ddl, "vector(768)")
	require.NotContains(t, ddl, embedDimPlaceholder)
}

func TestRenderBootstrapSQL_OtherDimension(t *testing.T) {
	ddl, err := renderBootstrapSQL(1536)
	require.NoError(t, err)
	require.Contains(t, ddl, "vector(1536)")
	require.NotContains(t, ddl, "vector(768)")
}

func TestRenderBootstrapSQL_RejectsNonPositive(t *testing.T) {
	_, err := renderBootstrapSQL(0)
	require.Error(t, err)

	_, err = renderBootstrapSQL(-1)
	require.Error(t, err)
}

func TestCheckEmbedDim(t *testing.T) {
	c := &DatabaseClient{embedDim: 3}

	require.NoError(t, c.checkEmbedDim([]float32{0.1, 0.2, 0.3}))

	err := c.checkEmbedDim([]float32{0.1, 0.2})
	require.Error(t, err)
	require.Contains(t, err.Error(), "2 dimensions")
	require.Contains(t, err.Error(), "expects 3")
}
