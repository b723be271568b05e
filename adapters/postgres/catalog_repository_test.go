package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogRepository_TableName(t *testing.T) {
	repo, err := NewCatalogRepository(nil, "product_catalog")
	require.NoError(t, err)
	assert.Equal(t, `"product_catalog"`, repo.quoted())

	for _, bad := range []string{"", "catalog; DROP TABLE users", "1table", "public.catalog"} {
		_, err := NewCatalogRepository(nil, bad)
		assert.Error(t, err, bad)
	}
}
