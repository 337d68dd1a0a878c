package main

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/infrastructure/transport"
)

// progressClient shows a spinner while the switch is busy
type progressClient struct {
	transport.Client
	target  string
	spinner *spinner.Spinner
}

func newProgressClient(client transport.Client, target string, out io.Writer) *progressClient {
	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond, spinner.WithWriter(out))
	return &progressClient{Client: client, target: target, spinner: s}
}

func (p *progressClient) spin(suffix string) func() {
	p.spinner.Suffix = suffix
	p.spinner.Start()
	return p.spinner.Stop
}

func (p *progressClient) Connect() error {
	defer p.spin(fmt.Sprintf(" Connecting to %s ...", p.target))()
	return p.Client.Connect()
}

func (p *progressClient) ExecuteCommand(cmd string) (string, error) {
	defer p.spin(fmt.Sprintf(" %s: %s ...", p.target, cmd))()
	return p.Client.ExecuteCommand(cmd)
}

// SetAuthSequence forwards the platform login prompts to the wrapped client
func (p *progressClient) SetAuthSequence(prompts []entities.AuthPrompt) {
	if auth, ok := p.Client.(transport.AuthConfigurable); ok {
		auth.SetAuthSequence(prompts)
	}
}
