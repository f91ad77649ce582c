package logger

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "01JABCDEF0123456789ABCDEFG")
	if got := GetRequestID(ctx); got != "01JABCDEF0123456789ABCDEFG" {
		t.Errorf("GetRequestID = %q", got)
	}
}

func TestRequestIDAbsent(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID on bare context = %q, want empty", got)
	}
}
