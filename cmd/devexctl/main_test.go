package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setMemoryEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("AUTH_SECRET", strings.Repeat("k", 32))
	t.Setenv("RAZORPAY_TEST_KEY_ID", "rzp_test_id")
	t.Setenv("RAZORPAY_TEST_KEY_SECRET", "rzp_test_secret")
	t.Setenv("OAUTH_PROVIDERS", "github")
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPurge_MemoryStore(t *testing.T) {
	setMemoryEnv(t)

	out, err := execute(t, paymentsCmd(), "purge", "--older-than", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 0 unverified payment(s) older than 1h0m0s")
}

func TestPurge_RejectsNonPositiveAge(t *testing.T) {
	setMemoryEnv(t)

	_, err := execute(t, paymentsCmd(), "purge", "--older-than", "0s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "older-than must be positive")
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	setMemoryEnv(t)

	_, err := execute(t, migrateCmd(), "up")
	assert.ErrorIs(t, err, errNotPostgres)
}
