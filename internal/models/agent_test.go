// internal/models/agent_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentPassword(t *testing.T) {
	agent := Agent{Code: "AGENT_01"}
	require.NoError(t, agent.SetPassword("s3cret-pass"))

	assert.NotEqual(t, "s3cret-pass", agent.PasswordHash)
	assert.NoError(t, agent.CheckPassword("s3cret-pass"))
	assert.Error(t, agent.CheckPassword("wrong-pass"))
}

func TestAgentIsActive(t *testing.T) {
	assert.True(t, (&Agent{Status: NodeStatusActive}).IsActive())
	assert.False(t, (&Agent{Status: NodeStatusSuspended}).IsActive())
	assert.False(t, (&Agent{Status: NodeStatusBanned}).IsActive())
}
