package utcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalName(t *testing.T) {
	assert.Equal(t, "search_posts", LocalName("localhost_8080.search_posts"))
	assert.Equal(t, "search_posts", LocalName("search_posts"))
}

func TestProviders(t *testing.T) {
	providers, err := Providers(
		[]string{"http://localhost:8080/utcp", "https://forum.example.com/utcp"},
		map[string]string{"Authorization": "Bearer token"},
	)
	require.NoError(t, err)
	require.Len(t, providers, 2)

	assert.Equal(t, "localhost_8080", providers[0].Name)
	assert.Equal(t, "http", providers[0].Type)
	assert.Equal(t, "POST", providers[0].Method)
	assert.Equal(t, "Bearer token", providers[0].Headers["Authorization"])
	assert.Equal(t, "application/json", providers[0].Headers["Content-Type"])

	assert.Equal(t, "forum_example_com_1", providers[1].Name)

	_, err = Providers([]string{"not a url"}, nil)
	assert.Error(t, err)
}
