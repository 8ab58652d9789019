package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, string]()

	t.Run("Set and Get", func(t *testing.T) {
		cache.Set("key", "value")
		got, ok := cache.Get("key")
		if !ok || got != "value" {
			t.Errorf("Expected 'value', got %q (ok=%v)", got, ok)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		if _, ok := cache.Get("missing"); ok {
			t.Error("Expected key to not exist")
		}
	})

	t.Run("Overwrite existing key", func(t *testing.T) {
		cache.Set("key", "value2")
		if got, _ := cache.Get("key"); got != "value2" {
			t.Errorf("Expected 'value2', got %q", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		cache.Delete("key")
		cache.Delete("missing")
		if _, ok := cache.Get("key"); ok {
			t.Error("Expected key to be deleted")
		}
	})
}

func TestCache_Take(t *testing.T) {
	cache := NewCache[string, int]()
	cache.Set("a", 1)

	v, ok := cache.Take("a")
	if !ok || v != 1 {
		t.Errorf("Expected to take 1, got %d (ok=%v)", v, ok)
	}
	if _, ok := cache.Take("a"); ok {
		t.Error("Expected second Take to miss")
	}
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache, got %d items", cache.Len())
	}
}

func TestCache_DeleteIf(t *testing.T) {
	type entry struct{ n int }
	cache := NewCache[string, *entry]()
	stale := &entry{1}
	current := &entry{2}
	cache.Set("a", current)

	if cache.DeleteIf("a", func(v *entry) bool { return v == stale }) {
		t.Error("Expected DeleteIf to keep a value that does not match")
	}
	if got, ok := cache.Get("a"); !ok || got != current {
		t.Errorf("Expected current entry to survive, got %v (ok=%v)", got, ok)
	}
	if !cache.DeleteIf("a", func(v *entry) bool { return v == current }) {
		t.Error("Expected DeleteIf to remove the matching value")
	}
	if cache.DeleteIf("a", func(*entry) bool { return true }) {
		t.Error("Expected DeleteIf on a missing key to report false")
	}
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache[int, string]()
	for i := 0; i < 5; i++ {
		cache.Set(i, fmt.Sprint(i))
	}
	if cache.Len() != 5 {
		t.Fatalf("Expected 5 items, got %d", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Expected cleared cache, got %d items", cache.Len())
	}
}

func TestCache_Concurrency(t *testing.T) {
	cache := NewCache[int, string]()
	const numGoroutines = 50

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cache.Set(n, fmt.Sprint(n))
			cache.Get(n)
			if n%2 == 0 {
				cache.Take(n)
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() != numGoroutines/2 {
		t.Errorf("Expected %d items left, got %d", numGoroutines/2, cache.Len())
	}
}

func TestRenderedMarkdownCache(t *testing.T) {
	ClearRenderedMarkdownCache()

	SetRenderedMarkdown("hash", "github", []byte("<p>a</p>"))
	SetRenderedMarkdown("hash", "monokai", []byte("<p>b</p>"))

	a, ok := GetRenderedMarkdown("hash", "github")
	if !ok || string(a.HTML) != "<p>a</p>" {
		t.Errorf("Unexpected entry for github theme: %+v", a)
	}
	b, ok := GetRenderedMarkdown("hash", "monokai")
	if !ok || string(b.HTML) != "<p>b</p>" {
		t.Errorf("Unexpected entry for monokai theme: %+v", b)
	}

	ClearRenderedMarkdownCache()
	if _, ok := GetRenderedMarkdown("hash", "github"); ok {
		t.Error("Expected cache to be cleared")
	}
}

func TestStaticAndSyntaxCaches(t *testing.T) {
	SetStaticHash("/static/style.css", "abc")
	if h, ok := GetStaticHash("/static/style.css"); !ok || h != "abc" {
		t.Errorf("Expected static hash 'abc', got %q", h)
	}

	SetSyntaxCSS("github", ".chroma{}")
	if css, ok := GetSyntaxCSS("github"); !ok || css != ".chroma{}" {
		t.Errorf("Expected cached CSS, got %q", css)
	}
}
