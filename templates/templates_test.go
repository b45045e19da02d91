package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	ts, err := All()
	require.NoError(t, err)

	ids := make([]string, 0, len(ts))
	for _, tpl := range ts {
		ids = append(ids, tpl.ID)
		assert.NotEmpty(t, tpl.Title, tpl.ID)
		assert.NotEmpty(t, tpl.Icon, tpl.ID)
		assert.NotNil(t, tpl.Prompts, tpl.ID)
	}

	assert.Equal(t, []string{
		"problem-statement",
		"founder-profile",
		"solution-hypothesis",
		"market-notes",
		"team",
		"funding-runway",
		"risks-unknowns",
		"external-references",
		"custom",
	}, ids)
}

func TestGet(t *testing.T) {
	tpl, err := Get("problem-statement")
	require.NoError(t, err)
	assert.Equal(t, "Target", tpl.Icon)
	require.Len(t, tpl.Prompts, 4)
	assert.Equal(t, "Why Now?", tpl.Prompts[3].Heading)
	require.NotNil(t, tpl.DefaultContent)
	assert.Contains(t, *tpl.DefaultContent, "<h2>Problem Statement</h2>")

	tpl, err = Get("risks-unknowns")
	require.NoError(t, err)
	assert.Equal(t, "Things you're still figuring out:", tpl.Prompts[0].Questions[0])

	custom, err := Get("custom")
	require.NoError(t, err)
	assert.Nil(t, custom.DefaultContent)
	assert.Empty(t, custom.Prompts)

	_, err = Get("pricing")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}
