package badgerstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"libdb.so/fogo-faucet/internal/cooldown/cooldowntest"
)

func TestStore(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "token-requests-v1"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cooldowntest.RunStoreTests(t, store)
}
