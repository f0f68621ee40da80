package scripts

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestLookup(t *testing.T) {
	r := NewRegistry()
	if err := r.Replace([]Script{
		{Name: "storeci", Path: "/opt/storeci.sh"},
		{Name: "storeci-78", Path: "/opt/storeci-78.sh"},
	}); err != nil {
		t.Fatal(err)
	}

	path, ok := r.Lookup("storeci-78")
	if !ok || path != "/opt/storeci-78.sh" {
		t.Errorf("expected /opt/storeci-78.sh, got %q (%v)", path, ok)
	}
	if _, ok := r.Lookup("renamed-away"); ok {
		t.Error("unknown names must not resolve")
	}
}

func TestReplaceValidates(t *testing.T) {
	r := NewRegistry()
	cases := [][]Script{
		{{Name: "", Path: "/x"}},
		{{Name: "a", Path: ""}},
		{{Name: "a", Path: "/x"}, {Name: "a", Path: "/y"}},
	}
	for i, scripts := range cases {
		if err := r.Replace(scripts); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestLoadMissingFileYieldsEmptyRegistry(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "scripts.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.All()) != 0 {
		t.Error("expected empty registry for missing file")
	}
}

func TestReplacePersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scripts.yaml")
	r, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Replace([]Script{{Name: "storeci", Path: "/opt/storeci.sh"}}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("replace should persist the file: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := reloaded.Lookup("storeci")
	if !ok || got != "/opt/storeci.sh" {
		t.Errorf("expected persisted script after reload, got %q (%v)", got, ok)
	}
}

func TestConcurrentReadersDuringReplace(t *testing.T) {
	r := NewRegistry()
	if err := r.Replace([]Script{{Name: "storeci", Path: "/v1"}}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				// A reader must always see a complete list: either the
				// old path or the new one, never a missing entry.
				if path, ok := r.Lookup("storeci"); !ok || (path != "/v1" && path != "/v2") {
					t.Errorf("torn read: %q (%v)", path, ok)
					return
				}
			}
		}()
	}

	for range 100 {
		if err := r.Replace([]Script{{Name: "storeci", Path: "/v2"}}); err != nil {
			t.Error(err)
		}
		if err := r.Replace([]Script{{Name: "storeci", Path: "/v1"}}); err != nil {
			t.Error(err)
		}
	}
	close(stop)
	wg.Wait()
}
