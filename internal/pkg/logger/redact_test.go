package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"john.doe@shop.test", "jo***@shop.test"},
		{"ab@shop.test", "***@shop.test"},
		{"a@shop.test", "***@shop.test"},
		{"not-an-email", "***@***"},
		{"two@at@signs", "***@***"},
		{"@shop.test", "***@***"},
		{"john@", "***@***"},
		{"", "***@***"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RedactEmail(tc.in), "input %q", tc.in)
	}
}
