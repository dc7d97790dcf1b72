package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsYes(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"s", true},
		{"Si", true},
		{"sí", true},
		{"SÍ", true},
		{"y", true},
		{" yes \n", true},
		{"n", false},
		{"no", false},
		{"", false},
		{"yess", false},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, IsYes(tt.answer))
		})
	}
}

func TestTerminal_Alert(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(""), &out, false)

	term.Alert("URL copiada!")
	term.Alert("URL eliminada correctamente")

	assert.Equal(t, "URL copiada!\nURL eliminada correctamente\n", out.String())
}

func TestTerminal_Confirm(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		assumeYes bool
		want      bool
		wantOut   string
	}{
		{name: "yes", input: "s\n", want: true, wantOut: "¿Seguro? [s/N] "},
		{name: "no", input: "n\n", want: false, wantOut: "¿Seguro? [s/N] "},
		{name: "default is no", input: "\n", want: false, wantOut: "¿Seguro? [s/N] "},
		{name: "answer without newline", input: "yes", want: true, wantOut: "¿Seguro? [s/N] "},
		{name: "eof", input: "", want: false, wantOut: "¿Seguro? [s/N] \n"},
		{name: "assume yes", input: "", assumeYes: true, want: true, wantOut: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			term := NewTerminal(strings.NewReader(tt.input), &out, tt.assumeYes)

			assert.Equal(t, tt.want, term.Confirm("¿Seguro?"))
			assert.Equal(t, tt.wantOut, out.String())
		})
	}
}

func TestTerminal_ConfirmReadsOneLinePerCall(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("n\ns\n"), &out, false)

	assert.False(t, term.Confirm("first"))
	assert.True(t, term.Confirm("second"))
}
