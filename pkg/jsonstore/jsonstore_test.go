package jsonstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/shashiranjanraj/orderdesk/pkg/jsonstore"
)

func connect(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := jsonstore.Connect(dir); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return dir
}

func TestLoad_MissingFileCreatesDefault(t *testing.T) {
	dir := connect(t)

	items := []string{}
	if err := jsonstore.Load("things", &items); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty default, got %v", items)
	}

	// The file must now exist holding the default.
	if _, err := os.Stat(filepath.Join(dir, "things.json")); err != nil {
		t.Errorf("expected things.json to be created: %v", err)
	}
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	connect(t)

	in := map[string]int{"a": 1, "b": 2}
	if err := jsonstore.Save("counts", in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out := map[string]int{}
	if err := jsonstore.Load("counts", &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out["a"] != 1 || out["b"] != 2 {
		t.Errorf("roundtrip mismatch: %v", out)
	}
}

func TestSave_UnescapedNonASCII(t *testing.T) {
	dir := connect(t)

	if err := jsonstore.Save("notes", []string{"привет <web>"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "notes.json"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	s := string(raw)
	if !strings.Contains(s, "привет") || !strings.Contains(s, "<web>") {
		t.Errorf("expected human-readable output, got %s", s)
	}
}

func TestLoad_CorruptFileLeftUntouched(t *testing.T) {
	dir := connect(t)

	p := filepath.Join(dir, "orders.json")
	if err := os.WriteFile(p, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	items := []string{"default"}
	err := jsonstore.Load("orders", &items)
	if !errors.Is(err, jsonstore.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if len(items) != 1 || items[0] != "default" {
		t.Errorf("dest must keep its default, got %v", items)
	}

	raw, _ := os.ReadFile(p)
	if string(raw) != "{not json" {
		t.Errorf("corrupt file must be left untouched, got %q", raw)
	}
}

func TestMutate_SerializesWriters(t *testing.T) {
	connect(t)

	if err := jsonstore.Save("tally", []int{}); err != nil {
		t.Fatal(err)
	}

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			err := jsonstore.Mutate("tally", func() error {
				var nums []int
				if err := jsonstore.Load("tally", &nums); err != nil {
					return err
				}
				nums = append(nums, len(nums)+1)
				return jsonstore.Save("tally", nums)
			})
			if err != nil {
				t.Errorf("Mutate: %v", err)
			}
		}()
	}
	wg.Wait()

	var nums []int
	if err := jsonstore.Load("tally", &nums); err != nil {
		t.Fatal(err)
	}
	if len(nums) != n {
		t.Errorf("lost updates: expected %d entries, got %d", n, len(nums))
	}
}
