package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusLines(t *testing.T) {
	tests := []struct {
		name   string
		write  func(buf *bytes.Buffer)
		prefix string
		parts  []string
	}{
		{
			name:   "success",
			write:  func(buf *bytes.Buffer) { Success(buf, "Done") },
			prefix: "✔",
			parts:  []string{"Done"},
		},
		{
			name:   "warn",
			write:  func(buf *bytes.Buffer) { Warn(buf, "Did not remove db", "prod") },
			prefix: "!",
			parts:  []string{"Did not remove db", "prod"},
		},
		{
			name:   "error",
			write:  func(buf *bytes.Buffer) { Error(buf, "Failed", "db", "boom") },
			prefix: "✘",
			parts:  []string{"Failed", "db", "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.write(&buf)

			out := buf.String()
			assert.True(t, strings.HasSuffix(out, "\n"))
			assert.Contains(t, out, tt.prefix)
			for _, p := range tt.parts {
				assert.Contains(t, out, p)
			}
			assert.Equal(t, len(tt.parts)-1, strings.Count(out, "·"))
		})
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, []string{"Hosted Database Name"}, [][]string{{"alpha"}, {"beta"}})

	out := buf.String()
	assert.Contains(t, out, "Hosted Database Name")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
	assert.Less(t, strings.Index(out, "alpha"), strings.Index(out, "beta"))
}
