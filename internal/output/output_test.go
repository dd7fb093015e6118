package output_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/rerun/internal/output"
	"github.com/temirov/rerun/internal/rerun"
	"github.com/temirov/rerun/internal/types"
)

func TestRenderListing(t *testing.T) {
	listing := rerun.Listing{DependencyPaths: []string{"frontend/src", "frontend/index.html"}}

	rawOutput, rawError := output.RenderListing(types.FormatRaw, listing)
	require.NoError(t, rawError)
	assert.Equal(t, listing.Declarations(), rawOutput)

	jsonOutput, jsonError := output.RenderListing(types.FormatJSON, listing)
	require.NoError(t, jsonError)
	var decoded []string
	require.NoError(t, json.Unmarshal([]byte(jsonOutput), &decoded))
	assert.Equal(t, listing.DependencyPaths, decoded)
}

func TestRenderListingEmpty(t *testing.T) {
	rawOutput, rawError := output.RenderListing(types.FormatRaw, rerun.Listing{})
	require.NoError(t, rawError)
	assert.Empty(t, rawOutput)

	jsonOutput, jsonError := output.RenderListing(types.FormatJSON, rerun.Listing{})
	require.NoError(t, jsonError)
	assert.Equal(t, "[]\n", jsonOutput)
}

func TestRenderListingRejectsUnknownFormat(t *testing.T) {
	_, renderError := output.RenderListing("xml", rerun.Listing{})
	assert.Error(t, renderError)
}
