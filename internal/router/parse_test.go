package router

import (
	"reflect"
	"testing"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in       string
		wantName string
		wantArgs string
	}{
		{"/expense.approve {\"amount\":100}", "expense.approve", "{\"amount\":100}"},
		{"/inventory.flag", "inventory.flag", ""},
		{"/inventory.flag SKU123 | broken label", "inventory.flag", "SKU123 | broken label"},
		{"/x", "x", ""},
		{"/", "", ""},
	}

	for _, tc := range cases {
		name, args := parseCommand(tc.in)
		if name != tc.wantName || args != tc.wantArgs {
			t.Errorf("parseCommand(%q) = (%q, %q), want (%q, %q)", tc.in, name, args, tc.wantName, tc.wantArgs)
		}
	}
}

func TestDecodeArgs(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{`{"amount":100}`, map[string]any{"amount": float64(100)}},
		{`[1,2]`, []any{float64(1), float64(2)}},
		{`SKU123 | broken label`, "SKU123 | broken label"},
		{`{"broken json`, `{"broken json`},
		{``, ""},
		{`plain words`, "plain words"},
	}

	for _, tc := range cases {
		got := decodeArgs(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("decodeArgs(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}
