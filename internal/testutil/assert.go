// Package testutil provides thin assertion helpers shared across tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertEqual fails the test when expected and actual differ.
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	require.Equal(t, expected, actual)
}

// AssertNoError fails the test when err is non-nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	require.NoError(t, err)
}

// AssertError fails the test when err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
}
