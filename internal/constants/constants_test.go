package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseFilename(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "history.db", DatabaseFilename)
}

func TestLogFilename(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "enginectl.log", LogFilename)
}

func TestDefaultEngineURLHasTrailingSlash(t *testing.T) {
	t.Parallel()
	assert.Equal(t, byte('/'), DefaultEngineURL[len(DefaultEngineURL)-1])
}
