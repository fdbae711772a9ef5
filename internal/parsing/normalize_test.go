package parsing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"decomposed accent", "Re\u0301sume\u0301", "R\u00e9sum\u00e9"},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"non-breaking spaces", "Poste\u00a0:\u202fDev", "Poste : Dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestUsableLines(t *testing.T) {
	assert.Equal(t, []string{"  Jean Dupont ", "Dev"}, UsableLines("\n  Jean Dupont \n \t\nDev\n"))
	assert.Empty(t, UsableLines(" \n\t"))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"Go", "SQL"}, dedupe([]string{" Go", "", "SQL", "Go ", "  "}))
	assert.Equal(t, []string{}, dedupe(nil))
}

func TestErrors(t *testing.T) {
	assert.Equal(t, "empty input: document has no usable text", (&EmptyInputError{}).Error())
	assert.Equal(t, "empty input: no file", (&EmptyInputError{Reason: "no file"}).Error())

	cause := errors.New("timeout")
	err := &ParserServiceError{Message: "parser service call failed", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "parser service error: parser service call failed: timeout", err.Error())
	assert.Equal(t, "parser service error: empty response", (&ParserServiceError{Message: "empty response"}).Error())
}
