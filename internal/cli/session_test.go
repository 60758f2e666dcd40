package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentbridge/agentbridge/internal/agentforce/auth"
	"github.com/agentbridge/agentbridge/internal/agentforce/config"
)

func TestParseModeFlag(t *testing.T) {
	config.SetTestConfig(&config.ConfigParam{
		FormatVersion: config.ConfigFormatVersion,
		Salesforce:    config.SalesforceConfig{MyDomainURL: "https://example.my.salesforce.com"},
	})

	mode, err := parseModeFlag("direct")
	require.NoError(t, err)
	assert.Equal(t, auth.ModeDirect, mode)

	mode, err = parseModeFlag("applink")
	require.NoError(t, err)
	assert.Equal(t, auth.ModeAppLink, mode)

	// empty flag defers to the configuration
	mode, err = parseModeFlag("")
	require.NoError(t, err)
	assert.Equal(t, auth.ModeDirect, mode)

	_, err = parseModeFlag("ldap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ldap")
}

func TestEventText(t *testing.T) {
	assert.Equal(t, "hello", eventText(`{"message":{"type":"TextChunk","message":"hello"}}`))
	assert.Equal(t, "hi", eventText(`{"message":{"text":"hi"}}`))
	assert.Equal(t, "plain", eventText(`{"text":"plain"}`))
	assert.Equal(t, "", eventText(`{"type":"ProgressIndicator"}`))
}
