package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "printer jam", "printer jam"},
		{"percent escaped", "100% broken", `100\% broken`},
		{"underscore escaped", "host_name", `host\_name`},
		{"backslash escaped first", `C:\temp`, `C:\\temp`},
		{"mixed metacharacters", `50%_\`, `50\%\_\\`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, escapeLike(tc.in))
		})
	}
}

func TestParseTicketNumber(t *testing.T) {
	n, ok := parseTicketNumber("1042")
	assert.True(t, ok)
	assert.Equal(t, int64(1042), n)

	_, ok = parseTicketNumber("12abc")
	assert.False(t, ok)

	_, ok = parseTicketNumber("printer")
	assert.False(t, ok)
}
