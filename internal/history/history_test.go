package history

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/mathnote/internal/kvstore"
)

type failingKV struct{ kvstore.Memory }

func (f *failingKV) Set(context.Context, string, []byte) error { return errors.New("disk full") }

// slowKV holds the first Set until release is closed.
type slowKV struct {
	*kvstore.Memory
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *slowKV) Set(ctx context.Context, key string, value []byte) error {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.release
	}
	return s.Memory.Set(ctx, key, value)
}

func at(sec int) time.Time { return time.Date(2024, 5, 1, 12, 0, sec, 0, time.UTC) }

func TestAppendPrependsAndPersists(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	s := New(kv, nil)
	if err := s.Append(ctx, Entry{"2+2", "4", at(1)}); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, Entry{"x", "5", at(2)}); err != nil {
		t.Fatal(err)
	}
	got := s.Entries()
	if len(got) != 2 || got[0].Expression != "x" || got[1].Expression != "2+2" {
		t.Fatalf("Entries = %+v", got)
	}
	if e, ok := s.Latest(); !ok || e.Result != "5" {
		t.Errorf("Latest = %+v, %v", e, ok)
	}

	reloaded := New(kv, nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatal(err)
	}
	back := reloaded.Entries()
	if len(back) != 2 {
		t.Fatalf("reloaded %d entries", len(back))
	}
	for i := range got {
		if back[i].Expression != got[i].Expression || !back[i].Timestamp.Equal(got[i].Timestamp) {
			t.Errorf("entry %d = %+v, want %+v", i, back[i], got[i])
		}
	}
}

func TestConcurrentAppendsPersistInOrder(t *testing.T) {
	ctx := context.Background()
	kv := &slowKV{Memory: kvstore.NewMemory(), entered: make(chan struct{}), release: make(chan struct{})}
	s := New(kv, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = s.Append(ctx, Entry{"a", "1", at(1)})
	}()
	<-kv.entered
	go func() {
		defer wg.Done()
		_ = s.Append(ctx, Entry{"b", "2", at(2)})
	}()
	time.Sleep(20 * time.Millisecond)
	close(kv.release)
	wg.Wait()

	reloaded := New(kv.Memory, nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if mem, disk := s.Len(), reloaded.Len(); mem != 2 || disk != 2 {
		t.Fatalf("memory=%d persisted=%d, want 2 and 2", mem, disk)
	}
	if e, _ := reloaded.Latest(); e.Expression != "b" {
		t.Errorf("persisted newest = %q, want b", e.Expression)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	s := New(kv, nil)
	_ = s.Append(ctx, Entry{"a", "1", at(0)})
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d", s.Len())
	}
	data, _ := kv.Get(ctx, StorageKey)
	if string(data) != "[]" {
		t.Errorf("persisted %q, want []", data)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   []string
	}{
		{"absent", "", nil},
		{"garbage", "{not json", nil},
		{"wrong shape", `{"expression":"a"}`, nil},
		{"browser format", `[{"expression":"1+1","result":"2","timestamp":"2024-05-01T12:00:00.000Z"}]`, []string{"1+1"}},
		{"skips bad entries", `[
			{"expression":"ok","result":"1","timestamp":"2024-05-01T12:00:00Z"},
			{"expression":"bad","result":"1","timestamp":"not a date"},
			{"expression":"missing","result":"1"},
			42,
			{"expression":"ok2","result":"2","timestamp":"2024-05-01T11:00:00Z"}
		]`, []string{"ok", "ok2"}},
	}
	for _, tt := range tests {
		ctx := context.Background()
		kv := kvstore.NewMemory()
		if tt.stored != "" {
			_ = kv.Set(ctx, StorageKey, []byte(tt.stored))
		}
		s := New(kv, nil)
		_ = s.Append(ctx, Entry{"stale", "0", at(0)})
		if err := s.Load(ctx); err != nil {
			t.Fatalf("%s: Load: %v", tt.name, err)
		}
		got := s.Entries()
		if len(got) != len(tt.want) {
			t.Errorf("%s: got %+v, want %v", tt.name, got, tt.want)
			continue
		}
		for i := range got {
			if got[i].Expression != tt.want[i] {
				t.Errorf("%s: entry %d = %q, want %q", tt.name, i, got[i].Expression, tt.want[i])
			}
		}
	}
}

func TestPersistFailureKeepsState(t *testing.T) {
	s := New(&failingKV{}, nil)
	err := s.Append(context.Background(), Entry{"a", "1", at(0)})
	if err == nil {
		t.Fatal("expected persist error")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestExport(t *testing.T) {
	s := New(kvstore.NewMemory(), nil)
	_ = s.Append(context.Background(), Entry{"y", "3", at(5)})
	data, err := s.Export()
	if err != nil {
		t.Fatal(err)
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0]["expression"] != "y" || out[0]["timestamp"] != "2024-05-01T12:00:05Z" {
		t.Errorf("export = %v", out)
	}
}
