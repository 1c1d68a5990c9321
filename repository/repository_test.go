package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/unkn0wn-root/settings/codec"
)

func TestClampTTL(t *testing.T) {
	cases := []struct {
		in, want time.Duration
	}{
		{0, time.Minute},
		{-time.Hour, time.Minute},
		{30 * time.Second, time.Minute},
		{time.Minute, time.Minute},
		{90*time.Second + 400*time.Millisecond, 90 * time.Second},
		{2 * time.Hour, 2 * time.Hour},
	}
	for _, tc := range cases {
		if got := ClampTTL(tc.in); got != tc.want {
			t.Fatalf("ClampTTL(%v) = %v want %v", tc.in, got, tc.want)
		}
	}
}

func TestCorruptErrorUnwraps(t *testing.T) {
	_, derr := codec.Value{}.Decode("not-a-blob")
	err := error(&CorruptError{Key: "site.title", Err: derr})
	if !errors.Is(err, codec.ErrCorrupt) {
		t.Fatalf("CorruptError does not unwrap to codec.ErrCorrupt: %v", err)
	}
	var ce *CorruptError
	if !errors.As(err, &ce) || ce.Key != "site.title" {
		t.Fatalf("errors.As failed: %v", err)
	}
}
