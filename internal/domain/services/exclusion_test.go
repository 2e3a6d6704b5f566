package services

import (
	"fmt"
	"sync"
	"testing"
)

func TestExclusionMatcher_IsExcluded(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		input    string
		want     bool
	}{
		{"prefix wildcard", []string{"Foo.*"}, "Foo.Bar", true},
		{"case insensitive", []string{"Foo.*"}, "foo.BAR", true},
		{"anchored start", []string{"Foo.*"}, "XFoo.Bar", false},
		{"literal dot", []string{"Foo.*"}, "FooXBar", false},
		{"single char", []string{"System.?uffers"}, "System.Buffers", true},
		{"single char needs exactly one", []string{"System.?uffers"}, "System.uffers", false},
		{"anchored end", []string{"Newtonsoft.Json"}, "Newtonsoft.Json.Bson", false},
		{"regex metacharacters are literal", []string{"a+b(c)"}, "a+b(c)", true},
		{"regex metacharacters do not repeat", []string{"a+b"}, "aab", false},
		{"any pattern matches", []string{"Microsoft.*", "System.*"}, "System.Memory", true},
		{"no patterns", nil, "Anything", false},
		{"blank pattern ignored", []string{"  "}, "  ", false},
		{"empty name", []string{"*"}, "", false},
		{"whitespace name", []string{"*"}, "   ", false},
		{"star matches everything", []string{"*"}, "Acme", true},
		{"multiline name", []string{"A*"}, "A\nB", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewExclusionMatcher(tt.patterns)
			if got := m.IsExcluded(tt.input); got != tt.want {
				t.Errorf("IsExcluded(%q) with %v = %v, want %v", tt.input, tt.patterns, got, tt.want)
			}
		})
	}
}

func TestExclusionMatcher_Patterns(t *testing.T) {
	m := NewExclusionMatcher([]string{"A*", "", "B?"})
	got := m.Patterns()
	if len(got) != 2 || got[0] != "A*" || got[1] != "B?" {
		t.Errorf("Patterns() = %v, want [A* B?]", got)
	}

	got[0] = "mutated"
	if m.Patterns()[0] != "A*" {
		t.Error("Patterns() must return a copy")
	}
}

func TestCompileWildcard_Cached(t *testing.T) {
	first := compileWildcard("Cache.Test.*")
	second := compileWildcard("Cache.Test.*")
	if first != second {
		t.Error("compileWildcard() compiled the same pattern twice")
	}
}

func TestCompileWildcard_Concurrent(t *testing.T) {
	const workers = 32
	results := make([]interface{}, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = compileWildcard("Concurrent.*")
			NewExclusionMatcher([]string{fmt.Sprintf("Worker%d.*", i)}).IsExcluded("Worker1.X")
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("worker %d got a different compiled pattern", i)
		}
	}
}

func TestWildcardToRegexp(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"Foo.*", `(?is)^Foo\..*$`},
		{"a?b", `(?is)^a.b$`},
		{"[x]", `(?is)^\[x\]$`},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if got := WildcardToRegexp(tt.pattern); got != tt.want {
				t.Errorf("WildcardToRegexp(%q) = %s, want %s", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestExclusionMatcher_InvalidUTF8Pattern(t *testing.T) {
	m := NewExclusionMatcher([]string{"bad\xffname*"})

	if m.IsExcluded("other") {
		t.Error("unrelated name should not be excluded")
	}
	if !m.IsExcluded("bad�name.Core") {
		t.Error("replacement rune should stand in for invalid bytes")
	}
}
