package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/buildnotes/internal/errors"
)

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir from Go 1.24 for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd.PersistentFlags())
		for _, sub := range rootCmd.Commands() {
			resetFlags(sub.Flags())
		}
	}()

	err = rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// resetFlags restores flag defaults between executions so one test's flags
// cannot leak into the next.
func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
}

func TestRootCmd_Structure(t *testing.T) {
	assert.Equal(t, "buildnotes", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotEmpty(t, rootCmd.Example)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "debug"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "flag %s should exist", name)
	}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "generate")
	assert.Contains(t, names, "init")
	assert.Contains(t, names, "version")
}

func TestExitCode(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"nil error": {
			err:  nil,
			want: ExitSuccess,
		},
		"plain error": {
			err:  assert.AnError,
			want: ExitRuntimeError,
		},
		"argument error": {
			err:  errors.NewArgumentError("bad argument"),
			want: ExitInvalidArguments,
		},
		"configuration error": {
			err:  errors.NewConfigError("bad config"),
			want: ExitConfigurationError,
		},
		"resolution error": {
			err:  errors.NewResolutionError("cannot resolve"),
			want: ExitResolutionFailed,
		},
		"connector error": {
			err:  errors.NewConnectorError("fetch failed"),
			want: ExitConnectorError,
		},
		"runtime error": {
			err:  errors.NewRuntimeError("boom"),
			want: ExitRuntimeError,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "buildnotes dev")
}

func TestInitCmd(t *testing.T) {
	t.Run("writes template", func(t *testing.T) {
		chdir(t, t.TempDir())

		stdout, _, err := executeCommand(t, "init")
		require.NoError(t, err)
		assert.Contains(t, stdout, ".buildnotes/config.yml")

		data, err := readProjectConfig()
		require.NoError(t, err)
		assert.Contains(t, data, "output_format")
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		chdir(t, t.TempDir())

		_, _, err := executeCommand(t, "init")
		require.NoError(t, err)

		_, _, err = executeCommand(t, "init")
		require.Error(t, err)
		cliErr := errors.AsCLIError(err)
		require.NotNil(t, cliErr)
		assert.Equal(t, errors.Configuration, cliErr.Category)

		_, _, err = executeCommand(t, "init", "--force")
		assert.NoError(t, err)
	})
}
