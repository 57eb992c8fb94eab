package discord

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpListsAllCommands(t *testing.T) {
	handler := NewHelpHandler()

	resp, err := handler.Handle(context.Background(), &Request{Command: "help"})

	require.NoError(t, err)
	require.Len(t, resp.Embeds, 1)
	assert.True(t, resp.Ephemeral)

	embed := resp.Embeds[0]
	assert.Equal(t, "Available Commands", embed.Title)
	require.Len(t, embed.Fields, 3)
	assert.Contains(t, embed.Fields[0].Name, "/pomodoro")
	assert.Contains(t, embed.Fields[1].Name, "/player")
	assert.Contains(t, embed.Fields[2].Name, "/help")
}
