package transcript_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_WriteAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	s, err := transcript.Create(path, nil)
	require.NoError(t, err)

	require.NoError(t, s.Write("hello "))
	require.NoError(t, s.Write("world\n"))
	s.Clear()

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close is idempotent")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", string(data))

	assert.Error(t, s.Write("late"))
}

func TestCreate_Unwritable(t *testing.T) {
	_, err := transcript.Create(filepath.Join(t.TempDir(), "missing", "out.txt"), nil)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
