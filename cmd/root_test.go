package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/purebundle/internal/domain"
	domainmocks "gooze.dev/pkg/purebundle/internal/domain/mocks"
	m "gooze.dev/pkg/purebundle/internal/model"
)

// useWorkflow replaces the workflow factory for one test and records the
// mode each command asked for.
func useWorkflow(t *testing.T, workflow domain.Workflow) *[]domain.Mode {
	t.Helper()

	var modes []domain.Mode

	original := newWorkflow
	newWorkflow = func(_ *cobra.Command, mode domain.Mode) (domain.Workflow, error) {
		modes = append(modes, mode)
		return workflow, nil
	}

	t.Cleanup(func() { newWorkflow = original })

	return &modes
}

// newTestRootCmd returns a fresh root command with the given subcommands.
func newTestRootCmd(subcommands ...*cobra.Command) (*cobra.Command, *bytes.Buffer) {
	cmd := newRootCmd()
	cmd.PersistentPreRun = nil
	cmd.AddCommand(subcommands...)

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})

	return cmd, out
}

func TestParsePaths(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []m.Path
	}{
		{"empty", []string{}, []m.Path{}},
		{"single", []string{"./..."}, []m.Path{m.Path("./...")}},
		{
			"multiple",
			[]string{"./src", "./app", "./lib/index.ts"},
			[]m.Path{m.Path("./src"), m.Path("./app"), m.Path("./lib/index.ts")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePaths(tt.args)
			require.Len(t, got, len(tt.want))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "purebundle", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, rootLongDescription, cmd.Long)

	for _, name := range []string{
		reportsFlagName, noCacheFlagName, excludeFlagName, presetFlagName, passesFlagName,
		optionsFlagName, modeFlagName, outDirFlagName, parallelFlagName, verboseFlagName,
	} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_HelpOutput(t *testing.T) {
	cmd, out := newTestRootCmd()
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "Supports Go-style path patterns")
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.Subset(t, names, []string{"transform", "check", "watch", "view", "init", "version"})
}

func TestTransformArgs(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cmd, _ := newTestRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{}))

		args := transformArgs([]string{"./src/..."}, domain.ModeCheck)

		assert.Equal(t, []m.Path{"./src/..."}, args.Paths)
		assert.Equal(t, m.Path(defaultReportsPath), args.Reports)
		assert.True(t, args.UseCache)
		assert.GreaterOrEqual(t, args.Threads, 1)
		assert.False(t, args.FailOnChange)
		assert.Empty(t, args.Exclude)
	})

	t.Run("flags", func(t *testing.T) {
		cmd, _ := newTestRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{
			"--no-cache", "-x", `\.gen\.ts$`, "--parallel", "3", "--reports", "out/report.yaml",
		}))

		args := transformArgs(nil, domain.ModeWrite)

		assert.False(t, args.UseCache)
		assert.Equal(t, []string{`\.gen\.ts$`}, args.Exclude)
		assert.Equal(t, 3, args.Threads)
		assert.Equal(t, m.Path("out/report.yaml"), args.Reports)
	})

	t.Run("out-dir is excluded from discovery", func(t *testing.T) {
		cmd, _ := newTestRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--out-dir", "./build/esm"}))

		args := transformArgs(nil, domain.ModeOutDir)
		require.Len(t, args.Exclude, 1)

		pattern := regexp.MustCompile(args.Exclude[0])
		assert.True(t, pattern.MatchString("build/esm/app.ts"))
		assert.False(t, pattern.MatchString("src/build/esmodule.ts"))
	})
}

func TestConfiguredMode(t *testing.T) {
	cmd, _ := newTestRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--mode", "diff"}))

	mode, err := configuredMode()
	require.NoError(t, err)
	assert.Equal(t, domain.ModeDiff, mode)

	require.NoError(t, cmd.ParseFlags([]string{"--mode", "bogus"}))

	_, err = configuredMode()
	require.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestBuildWorkflow(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		cmd, _ := newTestRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--preset", domain.PresetAccessControl}))

		workflow, err := buildWorkflow(cmd, domain.ModeCheck)
		require.NoError(t, err)
		assert.NotNil(t, workflow)
	})

	t.Run("unknown pass", func(t *testing.T) {
		cmd, _ := newTestRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--passes", "elide-side-imports,minify"}))

		_, err := buildWorkflow(cmd, domain.ModeCheck)
		require.ErrorIs(t, err, domain.ErrUnknownPass)
	})

	t.Run("out-dir mode without a directory", func(t *testing.T) {
		cmd, _ := newTestRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{}))

		_, err := buildWorkflow(cmd, domain.ModeOutDir)
		require.Error(t, err)
	})

	t.Run("invalid options", func(t *testing.T) {
		cmd, _ := newTestRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--options", `{"unknown":true}`}))

		_, err := buildWorkflow(cmd, domain.ModeCheck)
		require.ErrorIs(t, err, m.ErrInvalidOptions)
	})

}

func TestExecute(t *testing.T) {
	originalRootCmd := rootCmd
	defer func() { rootCmd = originalRootCmd }()

	mockCmd := &cobra.Command{
		Use: "test",
		RunE: func(_ *cobra.Command, _ []string) error {
			return nil
		},
	}
	mockCmd.SetOut(&bytes.Buffer{})
	mockCmd.SetErr(&bytes.Buffer{})

	rootCmd = mockCmd

	Execute()
}

func TestExecute_ProcessLevel_Failure(t *testing.T) {
	if os.Getenv("TEST_EXECUTE_SUBPROCESS_FAIL") == "1" {
		mockCmd := &cobra.Command{
			Use: "test",
			RunE: func(_ *cobra.Command, _ []string) error {
				fmt.Fprintln(os.Stderr, "error occurred")
				return fmt.Errorf("command failed")
			},
		}
		mockCmd.SetOut(os.Stdout)
		mockCmd.SetErr(os.Stderr)
		rootCmd = mockCmd

		Execute()

		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestExecute_ProcessLevel_Failure")
	cmd.Env = append(os.Environ(), "TEST_EXECUTE_SUBPROCESS_FAIL=1")
	output, err := cmd.CombinedOutput()

	require.Error(t, err)

	if exitErr, ok := err.(*exec.ExitError); ok {
		assert.Equal(t, 1, exitErr.ExitCode())
	} else {
		assert.Fail(t, "expected exec.ExitError", "got %T", err)
	}

	assert.Contains(t, string(output), "error occurred")
}

func TestWorkflowFactoryIsReplaceable(t *testing.T) {
	workflow := domainmocks.NewMockWorkflow(t)
	modes := useWorkflow(t, workflow)

	got, err := newWorkflow(nil, domain.ModeStdout)
	require.NoError(t, err)
	assert.Same(t, workflow, got)
	assert.Equal(t, []domain.Mode{domain.ModeStdout}, *modes)
}
