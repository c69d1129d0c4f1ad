package commands

import (
	"sync"
)

// ConfigPersister implements the auth.ConfigPersister interface.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateSession stores the session cookie and the store it belongs to.
// An empty sessionID clears the stored session.
func (p *ConfigPersister) UpdateSession(baseURL, sessionID string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config, err := loadConfig()
	if err != nil {
		return err
	}

	if baseURL != "" {
		config.BaseURL = baseURL
	}

	config.SessionID = sessionID

	return saveConfigStruct(config)
}
