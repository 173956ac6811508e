package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSink struct {
	chats      int
	broadcasts int
	chatErr    error
	bcastErr   error
}

func (c *countingSink) Chat(ctx context.Context, webhookURL, text string) error {
	c.chats++
	return c.chatErr
}

func (c *countingSink) Broadcast(ctx context.Context, subject, message string) error {
	c.broadcasts++
	return c.bcastErr
}

func TestMultiDeliversToAllSinks(t *testing.T) {
	first := &countingSink{}
	second := &countingSink{}
	m := Multi{first, second}

	require.NoError(t, m.Chat(context.Background(), "https://hooks.example", "text"))
	require.NoError(t, m.Broadcast(context.Background(), "subject", "message"))
	assert.Equal(t, 1, first.chats)
	assert.Equal(t, 1, second.chats)
	assert.Equal(t, 1, first.broadcasts)
	assert.Equal(t, 1, second.broadcasts)
}

func TestMultiFailedSinkDoesNotStarveSibling(t *testing.T) {
	chatErr := fmt.Errorf("webhook down")
	first := &countingSink{chatErr: chatErr}
	second := &countingSink{}
	m := Multi{first, second}

	err := m.Chat(context.Background(), "https://hooks.example", "text")
	require.ErrorIs(t, err, chatErr)
	assert.Equal(t, 1, second.chats, "second sink must still be attempted")
}

func TestMultiJoinsAllErrors(t *testing.T) {
	firstErr := fmt.Errorf("broker gone")
	secondErr := fmt.Errorf("topic missing")
	m := Multi{&countingSink{bcastErr: firstErr}, &countingSink{bcastErr: secondErr}}

	err := m.Broadcast(context.Background(), "subject", "message")
	require.ErrorIs(t, err, firstErr)
	require.ErrorIs(t, err, secondErr)
}
