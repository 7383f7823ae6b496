package index

import (
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testMeta() Meta {
	return Meta{Model: "hashing-v1", Dimension: 3, CorpusHash: "abc", BuildID: "build-1", BuiltAt: time.Unix(1700000000, 0).UTC()}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "jobs.index"))

	built, err := Build([][]float32{{1, 2, 3}, {0, 0, 1}, {-1, 0.5, 2}}, testMeta())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := Save(ctx, store, built); err != nil {
		t.Fatalf("save: %v", err)
	}

	want := testMeta()
	want.BuildID = "other-build"
	loaded, err := Load(ctx, store, want)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	got := loaded.Meta()
	if loaded.Len() != built.Len() || !got.Compatible(built.Meta()) || got.BuildID != "build-1" || !got.BuiltAt.Equal(built.Meta().BuiltAt) {
		t.Fatalf("unexpected loaded index: %+v", got)
	}
	for row := 0; row < built.Len(); row++ {
		a, b := built.vector(row), loaded.vector(row)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("row %d differs: %v vs %v", row, a, b)
			}
		}
	}

	query := []float32{0.3, -0.2, 0.9}
	before, _ := built.Search(query, 3)
	after, _ := loaded.Search(query, 3)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("search results differ: %v vs %v", before, after)
		}
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.index"))

	if _, err := Load(context.Background(), store, testMeta()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadCorruptArtifact(t *testing.T) {
	ctx := context.Background()
	built, _ := Build([][]float32{{1, 0, 0}}, testMeta())
	data, err := Encode(built)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "garbage", data: []byte("not an index")},
		{name: "truncated", data: data[:len(data)-7]},
		{name: "flipped byte", data: func() []byte {
			c := append([]byte(nil), data...)
			c[len(c)-8] ^= 0xFF
			return c
		}()},
		{name: "empty", data: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "jobs.index")
			if err := os.WriteFile(path, tt.data, 0o600); err != nil {
				t.Fatalf("write artifact: %v", err)
			}
			if _, err := Load(ctx, NewFileStore(path), testMeta()); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestLoadIncompatibleArtifact(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "jobs.index"))

	built, _ := Build([][]float32{{1, 0, 0}}, testMeta())
	if err := Save(ctx, store, built); err != nil {
		t.Fatalf("save: %v", err)
	}

	want := testMeta()
	want.CorpusHash = "def"
	if _, err := Load(ctx, store, want); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another corpus, got %v", err)
	}

	want = testMeta()
	want.Model = "text-embedding-004"
	if _, err := Load(ctx, store, want); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another model, got %v", err)
	}
}

func TestFileStoreSaveReplaces(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "jobs.index"))

	if err := store.Save(ctx, []byte("first")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, []byte("second")); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := store.Load(ctx)
	if err != nil || string(data) != "second" {
		t.Fatalf("unexpected contents %q (%v)", data, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected temporary files to be cleaned up, got %d entries", len(entries))
	}
}

func TestReadIgnoresBuildTarget(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "jobs.index"))

	built, _ := Build([][]float32{{1, 0, 0}, {0, 1, 0}}, testMeta())
	if err := Save(ctx, store, built); err != nil {
		t.Fatalf("save: %v", err)
	}

	other := testMeta()
	other.Model = "another-model"
	if _, err := Load(ctx, store, other); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another model, got %v", err)
	}

	ix, err := Read(ctx, store)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ix.Len() != 2 || ix.Meta().Model != "hashing-v1" {
		t.Fatalf("unexpected index: len=%d meta=%+v", ix.Len(), ix.Meta())
	}
}

func TestDecodeRejectsOversizedCount(t *testing.T) {
	// 4*count wraps to 4 on 64-bit ints, matching the single row that follows.
	hdr := []byte(`{"meta":{"model":"hashing-v1","dimension":1,"corpus_hash":"abc","built_at":"2023-11-14T22:13:20Z"},"count":4611686018427387905}`)

	var data []byte
	data = append(data, magic...)
	data = append(data, formatVersion)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(hdr)))
	data = append(data, hdr...)
	data = binary.LittleEndian.AppendUint32(data, math.Float32bits(1))
	data = binary.LittleEndian.AppendUint32(data, crc32.ChecksumIEEE(data))

	if _, err := Decode(data); !errors.Is(err, errCorrupt) {
		t.Fatalf("expected errCorrupt, got %v", err)
	}
}
