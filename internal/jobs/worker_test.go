package jobs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/relaydesk/relaydesk/internal/domain"
	"github.com/relaydesk/relaydesk/internal/kb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

func writeKBFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestKBReloader_ReloadsChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "general.csv")
	writeKBFile(t, path, "Question,Answer\nq1,a1\n")

	store := kb.NewStore()
	base, err := kb.LoadFile(path, domain.TierGeneral)
	require.NoError(t, err)
	store.Set(domain.TierGeneral, base)

	reloader := NewKBReloader(store, map[domain.Tier]string{domain.TierGeneral: path})
	reloader.Prime()

	// Rewrite with a newer mtime.
	time.Sleep(10 * time.Millisecond)
	writeKBFile(t, path, "Question,Answer\nq1,a1\nq2,a2\n")
	newTime := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(path, newTime, newTime))

	require.NoError(t, reloader.ProcessJobs(context.Background()))

	reloaded := store.Get(domain.TierGeneral)
	require.NotNil(t, reloaded)
	assert.Equal(t, 2, reloaded.Len())
}

func TestKBReloader_SkipsUnchangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "general.csv")
	writeKBFile(t, path, "Question,Answer\nq1,a1\n")

	store := kb.NewStore()
	base, err := kb.LoadFile(path, domain.TierGeneral)
	require.NoError(t, err)
	store.Set(domain.TierGeneral, base)

	reloader := NewKBReloader(store, map[domain.Tier]string{domain.TierGeneral: path})
	reloader.Prime()

	require.NoError(t, reloader.ProcessJobs(context.Background()))

	// Snapshot pointer is unchanged when the file was not touched.
	assert.Same(t, base, store.Get(domain.TierGeneral))
}

func TestKBReloader_KeepsSnapshotOnLoadFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "general.csv")
	writeKBFile(t, path, "Question,Answer\nq1,a1\n")

	store := kb.NewStore()
	base, err := kb.LoadFile(path, domain.TierGeneral)
	require.NoError(t, err)
	store.Set(domain.TierGeneral, base)

	reloader := NewKBReloader(store, map[domain.Tier]string{domain.TierGeneral: path})
	reloader.Prime()

	// Break the file: missing Answer column.
	writeKBFile(t, path, "Question\nq1\n")
	newTime := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(path, newTime, newTime))

	require.NoError(t, reloader.ProcessJobs(context.Background()))

	assert.Same(t, base, store.Get(domain.TierGeneral))
	assert.Equal(t, 1, store.Get(domain.TierGeneral).Len())
}

func TestKBReloader_MissingFileIsNotFatal(t *testing.T) {
	store := kb.NewStore()
	reloader := NewKBReloader(store, map[domain.Tier]string{
		domain.TierSenior: "/nonexistent/senior.csv",
	})

	assert.NoError(t, reloader.ProcessJobs(context.Background()))
	assert.Nil(t, store.Get(domain.TierSenior))
}
