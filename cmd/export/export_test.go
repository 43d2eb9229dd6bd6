package export_test

import (
	"testing"

	"fjacquet/payrecon/cmd/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCommand_Metadata(t *testing.T) {
	assert.Equal(t, "export", export.Cmd.Use)
	assert.Contains(t, export.Cmd.Short, "CSV")
	out := export.Cmd.Flags().Lookup("output")
	require.NotNil(t, out)
	assert.Equal(t, "o", out.Shorthand)
}

func TestFilter(t *testing.T) {
	f := export.Filter(false, false, "")
	assert.Nil(t, f.Matched)
	assert.Nil(t, f.ImportBatch)

	f = export.Filter(true, false, "IMP-1")
	require.NotNil(t, f.Matched)
	assert.True(t, *f.Matched)
	require.NotNil(t, f.ImportBatch)
	assert.Equal(t, "IMP-1", *f.ImportBatch)

	f = export.Filter(false, true, "")
	require.NotNil(t, f.Matched)
	assert.False(t, *f.Matched)
}
