package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "crewcall", cmd.Use)
	assert.Contains(t, cmd.Long, "duty-scheduling")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"login", "register", "logout", "whoami", "events", "duties", "templates", "notify"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "api-url", "store"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, "flag %s should exist", name)
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestDutiesCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	dutiesCmd, _, err := cmd.Find([]string{"duties"})
	require.NoError(t, err)

	eventFlag := dutiesCmd.PersistentFlags().Lookup("event")
	require.NotNil(t, eventFlag)

	addCmd, _, err := cmd.Find([]string{"duties", "add"})
	require.NoError(t, err)
	require.NotNil(t, addCmd.Flags().Lookup("title"))
	require.NotNil(t, addCmd.Flags().Lookup("due"))
	require.NotNil(t, addCmd.Flags().Lookup("assignee"))
}

func TestTemplatesApplyFlags(t *testing.T) {
	cmd := NewRootCommand()
	applyCmd, _, err := cmd.Find([]string{"templates", "apply"})
	require.NoError(t, err)

	eventFlag := applyCmd.Flags().Lookup("event")
	require.NotNil(t, eventFlag)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "whoami"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError), "plain errors default to failure")

	wrapped := WrapExitError(ExitFailure, "outer", NewExitError(ExitCommandError, "inner"))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped), "outermost code wins")
}
