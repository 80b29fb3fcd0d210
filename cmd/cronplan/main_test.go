package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"cronplan/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run(append([]string{"cronplan"}, args...))
	return out.String(), err
}

func TestCheck(t *testing.T) {
	out, err := runCLI(t, "check", "*/15 9-17 * * 1-5")
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	out, err = runCLI(t, "check", "0 12")
	assert.ErrorIs(t, err, errInvalidExpression)
	assert.Equal(t, "invalid\n", out)

	out, err = runCLI(t, "check", "--loose", "0 12")
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)
}

func TestCheck_SplitArguments(t *testing.T) {
	out, err := runCLI(t, "check", "0", "12", "*", "*", "*")
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)
}

func TestCheck_MissingExpression(t *testing.T) {
	_, err := runCLI(t, "check")
	assert.EqualError(t, err, "missing cron expression")
}

func TestNext(t *testing.T) {
	out, err := runCLI(t, "next", "--tz", "UTC", "--from", "2024-01-01 00:00", "-n", "3", "0 12 * * *")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 12:00\n2024-01-02 12:00\n2024-01-03 12:00\n", out)
}

func TestNext_Yearly(t *testing.T) {
	out, err := runCLI(t, "next", "--tz", "UTC", "--from", "2024-06-01 00:00", "-n", "3", "0 0 1 1 *")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01 00:00\n2026-01-01 00:00\n2027-01-01 00:00\n", out)
}

func TestNext_JSON(t *testing.T) {
	out, err := runCLI(t, "next", "--json", "--tz", "UTC", "--from", "2024-12-31 23:00", "-n", "2", "30 * * * *")
	require.NoError(t, err)

	var got []string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"2024-12-31 23:30", "2025-01-01 00:30"}, got)
}

func TestNext_LegacyMerge(t *testing.T) {
	out, err := runCLI(t, "next", "--legacy-merge", "--tz", "UTC", "--from", "2024-12-31 23:00", "-n", "2", "30 * * * *")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01 00:30\n2024-12-31 23:30\n", out)
}

func TestNext_Errors(t *testing.T) {
	_, err := runCLI(t, "next", "0 12 * *")
	assert.ErrorIs(t, err, core.ErrInvalidFormat)

	_, err = runCLI(t, "next", "0 24 * * *")
	assert.ErrorIs(t, err, core.ErrOutOfDomain)

	_, err = runCLI(t, "next", "--tz", "Nowhere/Special", "0 12 * * *")
	assert.Error(t, err)

	_, err = runCLI(t, "next", "--from", "yesterday", "0 12 * * *")
	assert.Error(t, err)
}

func TestField(t *testing.T) {
	out, err := runCLI(t, "field", "--field", "hour", "1-10/3")
	require.NoError(t, err)
	assert.Equal(t, "3 6 9\n", out)

	out, err = runCLI(t, "field", "--min", "0", "--max", "59", "5/20")
	require.NoError(t, err)
	assert.Equal(t, "0 20 40\n", out)
}

func TestField_Errors(t *testing.T) {
	_, err := runCLI(t, "field", "1")
	assert.Error(t, err)

	_, err = runCLI(t, "field", "--field", "second", "1")
	assert.Error(t, err)

	_, err = runCLI(t, "field", "--field", "month", "13")
	assert.ErrorIs(t, err, core.ErrOutOfDomain)
}

func TestCompare(t *testing.T) {
	out, err := runCLI(t, "compare", "--tz", "UTC", "--from", "2024-01-01 00:00", "-n", "2", "1-10/5 * * * *")
	require.NoError(t, err)

	assert.Contains(t, out, "2024-01-01 00:05")
	assert.Contains(t, out, "2024-01-01 00:01")
	assert.Contains(t, out, "schedules diverge at #1")
}

func TestCompare_Agree(t *testing.T) {
	out, err := runCLI(t, "compare", "--tz", "UTC", "--from", "2024-01-01 00:00", "-n", "2", "0 12 * * *")
	require.NoError(t, err)
	assert.Contains(t, out, "schedules agree")
}

func TestWeekdays(t *testing.T) {
	out, err := runCLI(t, "weekdays")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "0 Sunday", lines[0])
	assert.Equal(t, "6 Saturday", lines[6])
}
