package tokenstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mutombe/silver-carbon/internal/config"
	"github.com/Mutombe/silver-carbon/internal/models"
)

// Общий контракт: Get/Set/Clear одинаковы для всех реализаций.
func testContract(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := st.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	p1 := models.TokenPair{Access: "A1", Refresh: "R1"}
	require.NoError(t, st.Set(ctx, p1))

	got, ok, err := st.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, p1, got)

	p2 := models.TokenPair{Access: "A2", Refresh: "R2"}
	require.NoError(t, st.Set(ctx, p2))
	got, _, _ = st.Get(ctx)
	require.Equal(t, p2, got)

	require.ErrorIs(t, st.Set(ctx, models.TokenPair{Access: "only-access"}), ErrInvalidPair)
	got, _, _ = st.Get(ctx)
	require.Equal(t, p2, got, "invalid Set must not touch the stored pair")

	require.NoError(t, st.Clear(ctx))
	require.NoError(t, st.Clear(ctx))

	_, ok, err = st.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

// testAtomicity — читатель видит либо старую пару целиком, либо новую.
func testAtomicity(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, models.TokenPair{Access: "A0", Refresh: "R0"}))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				n := fmt.Sprintf("%d-%d", w, i)
				require.NoError(t, st.Set(ctx, models.TokenPair{Access: "A" + n, Refresh: "R" + n}))
			}
		}(w)
	}

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				p, ok, err := st.Get(ctx)
				require.NoError(t, err)
				require.True(t, ok)
				require.Equal(t, p.Access[1:], p.Refresh[1:], "torn pair: %+v", p)
			}
		}()
	}

	wg.Wait()
}

func TestMemory(t *testing.T) {
	t.Parallel()

	testContract(t, NewMemory())
	testAtomicity(t, NewMemory())
}

func TestFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	st, err := NewFile(path)
	require.NoError(t, err)
	require.Equal(t, path, st.Path())

	testContract(t, st)
	testAtomicity(t, st)
}

// TestFile_PersistsLayoutAndPermissions — формат {"access","refresh"}, права 0600.
func TestFile_PersistsLayoutAndPermissions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), Key+".json")
	st, err := NewFile(path)
	require.NoError(t, err)

	require.NoError(t, st.Set(context.Background(), models.TokenPair{Access: "A1", Refresh: "R1"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"access":"A1","refresh":"R1"}`, string(data))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	// Новый экземпляр видит ту же пару: сессия переживает перезапуск.
	again, err := NewFile(path)
	require.NoError(t, err)
	got, ok, err := again.Get(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "A1", got.Access)
}

func TestFile_CorruptedAndPartial(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	corrupted := filepath.Join(dir, "corrupted.json")
	require.NoError(t, os.WriteFile(corrupted, []byte("{not json"), 0o600))
	st, err := NewFile(corrupted)
	require.NoError(t, err)
	_, _, err = st.Get(context.Background())
	require.Error(t, err)

	partial := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(partial, []byte(`{"access":"A1"}`), 0o600))
	st, err = NewFile(partial)
	require.NoError(t, err)
	_, ok, err := st.Get(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNew_ByKind(t *testing.T) {
	t.Parallel()

	st, err := New(context.Background(), config.TokenStoreConfig{Kind: KindMemory})
	require.NoError(t, err)
	require.IsType(t, &Memory{}, st)

	st, err = New(context.Background(), config.TokenStoreConfig{Kind: KindFile, FilePath: filepath.Join(t.TempDir(), "t.json")})
	require.NoError(t, err)
	require.IsType(t, &File{}, st)

	_, err = New(context.Background(), config.TokenStoreConfig{Kind: "etcd"})
	require.ErrorIs(t, err, ErrUnknownKind)
}
