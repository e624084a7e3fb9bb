package models

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected bool
		kind     Kind
	}{
		{
			name:     "a bare expected error is recognised",
			err:      Expected(NoTargetFiles, "no files in %s", "/tmp"),
			expected: true,
			kind:     NoTargetFiles,
		},
		{
			name:     "a wrapped expected error is recognised",
			err:      fmt.Errorf("loading: %w", Expected(HeaderMismatch, "bad header")),
			expected: true,
			kind:     HeaderMismatch,
		},
		{
			name:     "any other error is unexpected",
			err:      os.ErrPermission,
			expected: false,
			kind:     "",
		},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, IsExpected(c.err), c.name)
		assert.Equal(t, c.kind, KindOf(c.err), c.name)
	}
}

func TestExpectedErrorUnwrapsCause(t *testing.T) {
	err := &ExpectedError{Kind: NoRuleFile, Msg: "rule file not found", Err: os.ErrNotExist}

	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, "rule file not found: file does not exist", err.Error())
}
