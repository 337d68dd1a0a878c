package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
)

type stubClient struct {
	connected bool
	commands  []string
	prompts   []entities.AuthPrompt
}

func (s *stubClient) Connect() error    { s.connected = true; return nil }
func (s *stubClient) Disconnect()       { s.connected = false }
func (s *stubClient) IsConnected() bool { return s.connected }
func (s *stubClient) ExecuteCommand(cmd string) (string, error) {
	s.commands = append(s.commands, cmd)
	return "ok", nil
}
func (s *stubClient) SetAuthSequence(prompts []entities.AuthPrompt) { s.prompts = prompts }

func TestProgressClient_Forwards(t *testing.T) {
	inner := &stubClient{}
	client := newProgressClient(inner, "10.0.0.1", &bytes.Buffer{})

	require.NoError(t, client.Connect())
	assert.True(t, client.IsConnected())

	out, err := client.ExecuteCommand("show interfaces")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []string{"show interfaces"}, inner.commands)

	prompts := []entities.AuthPrompt{{WaitFor: "Username:", SendCmd: "admin\n"}}
	client.SetAuthSequence(prompts)
	assert.Equal(t, prompts, inner.prompts)
	assert.False(t, client.spinner.Active())
}
