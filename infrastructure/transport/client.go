package transport

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
)

// Client is a raw CLI session with a switch
type Client interface {
	Connect() error
	Disconnect()
	ExecuteCommand(cmd string) (string, error)
	IsConnected() bool
}

// AuthConfigurable allows setting authentication prompts after client creation
type AuthConfigurable interface {
	SetAuthSequence(prompts []entities.AuthPrompt)
}

var (
	clientCache   = make(map[string]Client)
	clientCacheMu sync.Mutex
)

func cacheKey(cfg entities.SwitchConfig) string {
	keyData := struct {
		Transport      string
		Target         string
		Port           int
		Username       string
		Password       string
		EnablePassword string
	}{
		Transport:      cfg.Transport,
		Target:         cfg.Target,
		Port:           cfg.DefaultPort(),
		Username:       cfg.Username,
		Password:       cfg.Password,
		EnablePassword: cfg.EnablePassword,
	}
	bytes, _ := json.Marshal(keyData)
	hash := sha256.Sum256(bytes)
	return hex.EncodeToString(hash[:])
}

// Get returns a cached client for the provided configuration or creates a new one
func Get(cfg entities.SwitchConfig, logger logrus.FieldLogger) Client {
	clientCacheMu.Lock()
	defer clientCacheMu.Unlock()
	key := cacheKey(cfg)
	if client, exists := clientCache[key]; exists {
		return client
	}
	client := newClient(cfg, logger)
	clientCache[key] = client
	return client
}

// CloseAll releases every cached client session
func CloseAll() {
	clientCacheMu.Lock()
	defer clientCacheMu.Unlock()
	for key, client := range clientCache {
		client.Disconnect()
		delete(clientCache, key)
	}
}

func newClient(cfg entities.SwitchConfig, logger logrus.FieldLogger) Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("target", cfg.Target)
	if cfg.Transport == "ssh" {
		return NewSSHClient(cfg, logger)
	}
	return NewTelnetClient(cfg, logger)
}
