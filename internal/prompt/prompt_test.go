package prompt

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{name: "enter takes default yes", input: "\n", def: true, want: true},
		{name: "enter takes default no", input: "\n", def: false, want: false},
		{name: "explicit yes", input: "y\n", def: false, want: true},
		{name: "explicit no", input: "No\n", def: true, want: false},
		{name: "retries on garbage", input: "maybe\nyes\n", def: false, want: true},
		{name: "last line without newline", input: "n", def: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewTerminal(strings.NewReader(tt.input), &out)

			got, err := p.Confirm("Continue?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Continue?")
		})
	}
}

func TestConfirmEOF(t *testing.T) {
	p := NewTerminal(strings.NewReader(""), io.Discard)

	_, err := p.Confirm("Continue?", true)
	assert.ErrorIs(t, err, io.EOF)
}

func TestInput(t *testing.T) {
	p := NewTerminal(strings.NewReader("\n  mydb  \n"), io.Discard)

	got, err := p.Input("Db name", false)
	require.NoError(t, err)
	assert.Equal(t, "mydb", got)

	p = NewTerminal(strings.NewReader("\n"), io.Discard)
	got, err = p.Input("Optional db name", true)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestSecretFallsBackToLineInput(t *testing.T) {
	p := NewTerminal(strings.NewReader("s3cr3t\n"), io.Discard)

	got, err := p.Secret("AWS secret access key")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", got)
}

func TestSelect(t *testing.T) {
	items := []string{"us-east-1", "us-east-2", "eu-west-1"}

	var out bytes.Buffer
	p := NewTerminal(strings.NewReader("7\n3\n"), &out)
	got, err := p.Select("Region", items, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Contains(t, out.String(), "1) us-east-1")
	assert.Contains(t, out.String(), "between 1 and 3")

	p = NewTerminal(strings.NewReader("\n"), io.Discard)
	got, err = p.Select("Region", items, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	_, err = p.Select("Region", nil, 0)
	assert.Error(t, err)
}

func TestMultiSelect(t *testing.T) {
	items := []string{"aws_ec2", "aws_ecr", "aws_ecs"}

	p := NewTerminal(strings.NewReader("3, 1,3\n"), io.Discard)
	got, err := p.MultiSelect("Modules", items)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, got)

	p = NewTerminal(strings.NewReader("0\n2\n"), io.Discard)
	got, err = p.MultiSelect("Modules", items)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)

	p = NewTerminal(strings.NewReader("\n"), io.Discard)
	_, err = p.MultiSelect("Modules", items)
	assert.ErrorIs(t, err, ErrNoSelection)
}
