package storage

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	return s
}

func TestSaveAndOpen(t *testing.T) {
	s := newTestStore(t)

	path, size, err := s.Save("relatório final.pdf", strings.NewReader("conteudo"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), size)
	assert.Contains(t, path, "relatorio_final.pdf")
	assert.NotContains(t, path, " ")

	f, err := s.Open(path)
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "conteudo", string(data))
}

func TestSaveCollisionGetsSuffix(t *testing.T) {
	s := newTestStore(t)

	first, _, err := s.Save("a.txt", strings.NewReader("one"))
	require.NoError(t, err)
	second, _, err := s.Save("a.txt", strings.NewReader("two"))
	require.NoError(t, err)

	// same-second uploads of the same name must not overwrite each other
	if first == second {
		t.Fatalf("expected distinct paths, got %q twice", first)
	}
}

func TestSaveConcurrentSameName(t *testing.T) {
	s := newTestStore(t)

	const n = 8
	paths := make([]string, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], _, errs[i] = s.Save("a.txt", strings.NewReader(fmt.Sprintf("payload-%d", i)))
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[paths[i]], "path %q returned twice", paths[i])
		seen[paths[i]] = true

		// each writer's content must survive intact
		f, err := s.Open(paths[i])
		require.NoError(t, err)
		data, err := io.ReadAll(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("payload-%d", i), string(data))
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Open("../../etc/passwd")
	assert.Error(t, err)

	err = s.Delete("../outside.txt")
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, "http://localhost:8080/files/x.pdf", s.PublicURL("x.pdf"))
}
