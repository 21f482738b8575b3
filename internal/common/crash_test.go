package common

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestWriteCrashFile(t *testing.T) {
	previous := CrashLogDir
	t.Cleanup(func() { CrashLogDir = previous })

	InstallCrashHandler(t.TempDir())
	path := WriteCrashFile("boom", "stack here")
	require.NotEmpty(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SENTIO CRASH REPORT")
	assert.Contains(t, string(data), "boom")
	assert.Contains(t, string(data), "stack here")
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	before := GetGoroutineCount()

	var wg sync.WaitGroup
	wg.Add(1)
	SafeGo(arbor.NewLogger(), "panicky", func() {
		defer wg.Done()
		panic("boom")
	})
	wg.Wait()

	assert.Equal(t, before+1, GetGoroutineCount())
}
