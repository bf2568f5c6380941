package ratelimit

import (
	"strings"
	"testing"

	"github.com/go-monolith/mono/pkg/types"
)

func TestExtractClientID(t *testing.T) {
	m := New(WithClientIDHeader("X-Client-ID"))

	tests := []struct {
		name string
		msg  *types.Msg
		want string
	}{
		{
			name: "header present",
			msg: &types.Msg{
				Header: map[string][]string{
					"X-Client-ID": {"client-42"},
				},
			},
			want: "client-42",
		},
		{
			name: "header missing",
			msg:  &types.Msg{Header: map[string][]string{}},
			want: "anonymous",
		},
		{
			name: "nil header",
			msg:  &types.Msg{Header: nil},
			want: "anonymous",
		},
		{
			name: "empty value falls back",
			msg: &types.Msg{
				Header: map[string][]string{
					"X-Client-ID": {""},
				},
			},
			want: "anonymous",
		},
		{
			name: "oversized value truncated",
			msg: &types.Msg{
				Header: map[string][]string{
					"X-Client-ID": {strings.Repeat("a", 300)},
				},
			},
			want: strings.Repeat("a", maxClientIDLength),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.extractClientID(tt.msg); got != tt.want {
				t.Errorf("extractClientID() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Two clients hitting the same service must count against separate
// windows, so the per-service limit is never a global cap.
func TestLimitKeysIncludeClient(t *testing.T) {
	m := New()

	alice := &types.Msg{Header: map[string][]string{m.config.ClientIDHeader: {"alice"}}}
	bob := &types.Msg{Header: map[string][]string{m.config.ClientIDHeader: {"bob"}}}

	aliceKey := "login:" + m.extractClientID(alice)
	bobKey := "login:" + m.extractClientID(bob)

	if aliceKey == bobKey {
		t.Errorf("distinct clients share limit key %q", aliceKey)
	}
	if aliceKey != "login:alice" {
		t.Errorf("key = %q, want login:alice", aliceKey)
	}
}
