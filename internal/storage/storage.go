// Package storage provides XDG-compliant storage path management for enginectl.
package storage

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"

	"github.com/patrick-jessen/enginectl/internal/constants"
)

// AppName is the application name used for XDG directory paths
const AppName = constants.AppName

// Manager handles storage operations with filesystem abstraction
type Manager struct {
	fs afero.Fs
}

// New creates a new storage manager with the given filesystem
func New(fs afero.Fs) *Manager {
	return &Manager{fs: fs}
}

// GetDataDir returns the XDG data directory for enginectl, creating it if necessary
func (m *Manager) GetDataDir() (string, error) {
	dataDir := filepath.Join(xdg.DataHome, AppName)
	err := m.fs.MkdirAll(dataDir, 0o750)
	if err != nil {
		return "", fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return dataDir, nil
}

// GetLogPath returns the full path to the enginectl log file
func (m *Manager) GetLogPath() (string, error) {
	dataDir, err := m.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, constants.LogFilename), nil
}

// GetDatabasePath returns the full path to the commit journal database
func (m *Manager) GetDatabasePath() (string, error) {
	dataDir, err := m.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, constants.DatabaseFilename), nil
}

// GetConfigPath returns the default configuration file path in the XDG config directory
func (m *Manager) GetConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, constants.ConfigFilename)
}
