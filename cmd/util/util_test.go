package util

import (
	"github.com/ValentinKolb/dCount/rpc/common"
	"strings"
	"testing"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 40)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("line %q is longer than %d characters", line, Wrap)
		}
	}
	if got := WrapString("short text"); got != "short text" {
		t.Errorf("WrapString() = %q, want %q", got, "short text")
	}
}

func TestParseShards(t *testing.T) {
	shards, err := ParseShards("1=lstore, 2=dstore")
	if err != nil {
		t.Fatalf("ParseShards() error = %v", err)
	}
	want := []common.ServerShard{
		{ShardID: 1, Type: common.ShardTypeLocalCounter},
		{ShardID: 2, Type: common.ShardTypeReplicatedCounter},
	}
	if len(shards) != len(want) {
		t.Fatalf("ParseShards() returned %d shards, want %d", len(shards), len(want))
	}
	for i := range want {
		if shards[i] != want[i] {
			t.Errorf("shard %d = %+v, want %+v", i, shards[i], want[i])
		}
	}
}

func TestParseShardsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing type", "1"},
		{"invalid id", "x=lstore"},
		{"invalid type", "1=maple"},
		{"duplicate id", "1=lstore,1=dstore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseShards(tt.input); err == nil {
				t.Errorf("ParseShards(%q) expected error", tt.input)
			}
		})
	}
}

func TestParseClusterMembers(t *testing.T) {
	members, err := ParseClusterMembers("node-1=localhost:63001,node-2=localhost:63002")
	if err != nil {
		t.Fatalf("ParseClusterMembers() error = %v", err)
	}
	if members[HashID("node-1")] != "localhost:63001" || members[HashID("node-2")] != "localhost:63002" {
		t.Errorf("unexpected members: %v", members)
	}
	if HashID("node-1") != HashID(" node-1 ") {
		t.Errorf("HashID should ignore surrounding whitespace")
	}

	if _, err := ParseClusterMembers("node-1"); err == nil {
		t.Errorf("expected error for member without address")
	}
}
