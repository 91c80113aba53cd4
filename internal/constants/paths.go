// Package constants contains file names and defaults shared across enginectl.
package constants

const (
	// AppName is used for XDG directory paths and the environment prefix.
	AppName = "enginectl"

	// ConfigFilename is the default configuration file name.
	ConfigFilename = "enginectl.yml"

	// LogFilename is the default log file name.
	LogFilename = "enginectl.log"

	// DatabaseFilename is the commit journal database file name.
	DatabaseFilename = "history.db"
)
