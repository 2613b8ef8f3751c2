package backend

import (
	"reflect"
	"testing"
)

func TestSplitPath(t *testing.T) {
	cases := map[string][]string{
		"":         {},
		"/":        {},
		"a":        {"a"},
		"/a/b":     {"a", "b"},
		"a/b/":     {"a", "b"},
		"//a//b//": {"a", "b"},
	}
	for in, want := range cases {
		got := SplitPath(in)
		if len(got) == 0 {
			got = []string{}
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("SplitPath(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJoinPath(t *testing.T) {
	if got := JoinPath(nil); got != "/" {
		t.Errorf("JoinPath(nil) = %q, want %q", got, "/")
	}
	if got := JoinPath([]string{"a", "b"}); got != "/a/b" {
		t.Errorf("JoinPath = %q, want %q", got, "/a/b")
	}
}
