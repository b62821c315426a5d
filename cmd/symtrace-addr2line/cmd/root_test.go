package cmd

import (
	"testing"

	"github.com/jetsetilly/symtrace/test"
)

func TestParseAddressAcceptsHexPrefix(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want uint64
	}{
		{"0x1000", 0x1000},
		{"0X1000", 0x1000},
		{"1000", 0x1000},
		{"deadbeef", 0xdeadbeef},
	} {
		got, err := parseAddress(tc.in)
		test.ExpectSuccess(t, err)
		test.Equate(t, got, tc.want)
	}
}

func TestParseAddressRejectsGarbage(t *testing.T) {
	_, err := parseAddress("not-hex")
	test.ExpectFailure(t, err)
}
