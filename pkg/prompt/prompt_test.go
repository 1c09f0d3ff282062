package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_Confirm(t *testing.T) {
	cases := []struct {
		input string
		def   bool
		want  bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{" No \n", true, false},
		{"maybe\n", true, true},
		{"\n", false, false},
		{"\n", true, true},
		{"y", false, true},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		c := NewConsole(strings.NewReader(tc.input), &out)
		got, err := c.Confirm("Overwrite?", tc.def)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "input %q def %v", tc.input, tc.def)
		assert.Contains(t, out.String(), "Overwrite?")
	}
}

func TestConsole_ClosedInputAborts(t *testing.T) {
	for _, def := range []bool{true, false} {
		c := NewConsole(strings.NewReader(""), &bytes.Buffer{})
		got, err := c.Confirm("Overwrite?", def)
		assert.ErrorIs(t, err, ErrAborted)
		assert.False(t, got)
	}

	c := NewConsole(strings.NewReader("y\n"), &bytes.Buffer{})
	first, err := c.Confirm("a", false)
	require.NoError(t, err)
	assert.True(t, first)
	_, err = c.Confirm("b", true)
	assert.ErrorIs(t, err, ErrAborted, "second question finds the input exhausted")
}

func TestConsole_ReadsSuccessiveAnswers(t *testing.T) {
	c := NewConsole(strings.NewReader("y\nn\n"), &bytes.Buffer{})
	first, _ := c.Confirm("a", false)
	second, _ := c.Confirm("b", true)
	assert.True(t, first)
	assert.False(t, second)
}

func TestAlways(t *testing.T) {
	yes, _ := Always(true).Confirm("x", false)
	no, _ := Always(false).Confirm("x", true)
	assert.True(t, yes)
	assert.False(t, no)
}
