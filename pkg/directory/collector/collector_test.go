package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KyleBrandon/synapse/pkg/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLister serves listings from an in-memory tree keyed by item id.
type fakeLister struct {
	mu       sync.Mutex
	children map[string][]directory.Child
	failures map[string]error
	calls    []string
	delay    time.Duration
}

func newFakeLister() *fakeLister {
	return &fakeLister{
		children: make(map[string][]directory.Child),
		failures: make(map[string]error),
	}
}

func (f *fakeLister) add(parentID string, children ...directory.Child) {
	f.children[parentID] = append(f.children[parentID], children...)
}

func (f *fakeLister) ListChildren(ctx context.Context, driveID, itemID string) ([]directory.Child, error) {
	f.mu.Lock()
	f.calls = append(f.calls, itemID)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := f.failures[itemID]; ok {
		return nil, err
	}

	return f.children[itemID], nil
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func file(id, name string, size int64) directory.Child {
	return directory.Child{ID: id, Name: name, Size: &size, IsFile: true}
}

func folder(id, name string) directory.Child {
	size := int64(4096)
	return directory.Child{ID: id, Name: name, Size: &size, IsFolder: true}
}

func paths(items []directory.Entry) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Path)
	}
	return out
}

func modes() map[string]Config {
	return map[string]Config{
		"Sequential": {Concurrency: 1},
		"Parallel":   {Concurrency: 4},
	}
}

func TestCollectEmptyContainer(t *testing.T) {
	for name, cfg := range modes() {
		t.Run(name, func(t *testing.T) {
			lister := newFakeLister()

			result, err := New(lister, cfg).CollectAll(context.Background(), "drive-1")
			require.NoError(t, err)

			assert.Empty(t, result.Items)
			assert.NotNil(t, result.Items)
			assert.Equal(t, 0, result.TotalCount)
			assert.Empty(t, result.Failures)
			assert.NoError(t, result.Err())
		})
	}
}

func TestCollectFlatAndNested(t *testing.T) {
	for name, cfg := range modes() {
		t.Run(name, func(t *testing.T) {
			lister := newFakeLister()
			lister.add(directory.RootItemID, file("a", "A", 10), folder("b", "B"))
			lister.add("b", file("c", "C", 20))

			result, err := New(lister, cfg).CollectAll(context.Background(), "drive-1")
			require.NoError(t, err)

			assert.Equal(t, []string{"A", "B", "B/C"}, paths(result.Items))
			assert.Equal(t, 3, result.TotalCount)
			assert.Equal(t, directory.KindFile, result.Items[0].Kind)
			assert.Equal(t, directory.KindFolder, result.Items[1].Kind)
			assert.Equal(t, directory.KindFile, result.Items[2].Kind)
		})
	}
}

func TestCollectBranchFailureIsContained(t *testing.T) {
	for name, cfg := range modes() {
		t.Run(name, func(t *testing.T) {
			lister := newFakeLister()
			lister.add(directory.RootItemID, file("a", "A", 10), folder("b", "B"), folder("d", "D"))
			lister.add("b", file("c", "C", 20))
			lister.add("d", file("e", "E", 30))
			lister.failures["b"] = errors.New("403 forbidden")

			result, err := New(lister, cfg).CollectAll(context.Background(), "drive-1")
			require.NoError(t, err)

			assert.Equal(t, []string{"A", "B", "D", "D/E"}, paths(result.Items))
			assert.Equal(t, directory.KindFolder, result.Items[1].Kind)
			assert.Equal(t, 4, result.TotalCount)

			require.Len(t, result.Failures, 1)
			assert.Equal(t, "b", result.Failures[0].Container.ItemID)
			assert.Equal(t, "B", result.Failures[0].Path)
			assert.ErrorContains(t, result.Err(), "403 forbidden")
		})
	}
}

func TestCollectRootListingFailure(t *testing.T) {
	lister := newFakeLister()
	lister.failures[directory.RootItemID] = errors.New("boom")

	result, err := New(lister, DefaultConfig()).CollectAll(context.Background(), "drive-1")
	require.NoError(t, err)

	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.TotalCount)
	assert.Len(t, result.Failures, 1)
}

func TestCollectDeepChainPath(t *testing.T) {
	for name, cfg := range modes() {
		t.Run(name, func(t *testing.T) {
			lister := newFakeLister()
			lister.add(directory.RootItemID, folder("x", "X"))
			lister.add("x", folder("y", "Y"))
			lister.add("y", file("z", "Z", 1))

			result, err := New(lister, cfg).CollectAll(context.Background(), "drive-1")
			require.NoError(t, err)

			require.Len(t, result.Items, 3)
			last := result.Items[2]
			assert.Equal(t, "Z", last.Name)
			assert.Equal(t, "X/Y/Z", last.Path)
		})
	}
}

func TestCollectFolderCarriesNoSize(t *testing.T) {
	lister := newFakeLister()
	lister.add(directory.RootItemID, folder("b", "B.zip"), file("a", "folder", 7))

	result, err := New(lister, DefaultConfig()).CollectAll(context.Background(), "drive-1")
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, directory.KindFolder, result.Items[0].Kind)
	assert.Nil(t, result.Items[0].Size)
	assert.Equal(t, directory.KindFile, result.Items[1].Kind)
	require.NotNil(t, result.Items[1].Size)
	assert.Equal(t, int64(7), *result.Items[1].Size)
}

func TestCollectIsIdempotent(t *testing.T) {
	lister := newFakeLister()
	lister.add(directory.RootItemID, folder("b", "B"), file("a", "A", 1))
	lister.add("b", folder("c", "C"))
	lister.add("c", file("d", "D", 2))

	c := New(lister, DefaultConfig())

	first, err := c.CollectAll(context.Background(), "drive-1")
	require.NoError(t, err)
	second, err := c.CollectAll(context.Background(), "drive-1")
	require.NoError(t, err)

	assert.ElementsMatch(t, first.Items, second.Items)
}

func TestCollectSequentialOrderIsPreOrder(t *testing.T) {
	lister := newFakeLister()
	lister.add(directory.RootItemID, folder("b", "B"), file("a", "A", 1), folder("e", "E"))
	lister.add("b", file("c", "C", 1), folder("d", "D"))
	lister.add("d", file("f", "F", 1))
	lister.add("e", file("g", "G", 1))

	result, err := New(lister, DefaultConfig()).CollectAll(context.Background(), "drive-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "B/C", "B/D", "B/D/F", "A", "E", "E/G"}, paths(result.Items))
	assert.Equal(t, []string{directory.RootItemID, "b", "d", "e"}, lister.calls)
}

func TestCollectParallelMatchesSequential(t *testing.T) {
	lister := newFakeLister()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("dir-%d", i)
		lister.add(directory.RootItemID, folder(id, fmt.Sprintf("Dir %d", i)))
		for j := 0; j < 3; j++ {
			sub := fmt.Sprintf("%s-%d", id, j)
			lister.add(id, folder(sub, fmt.Sprintf("Sub %d", j)), file(sub+"-f", fmt.Sprintf("file-%d.txt", j), int64(j)))
			lister.add(sub, file(sub+"-leaf", "leaf.bin", 99))
		}
	}
	lister.failures["dir-2-1"] = errors.New("throttled")

	sequential, err := New(lister, Config{Concurrency: 1}).CollectAll(context.Background(), "drive-1")
	require.NoError(t, err)

	parallel, err := New(lister, Config{Concurrency: 3}).CollectAll(context.Background(), "drive-1")
	require.NoError(t, err)

	assert.Equal(t, sequential.Items, parallel.Items)
	assert.Equal(t, sequential.TotalCount, parallel.TotalCount)
	assert.Len(t, parallel.Failures, 1)
	assert.Len(t, sequential.Failures, 1)
}

func TestCollectMaxDepth(t *testing.T) {
	for name, cfg := range modes() {
		t.Run(name, func(t *testing.T) {
			lister := newFakeLister()
			lister.add(directory.RootItemID, folder("x", "X"), file("a", "A", 1))
			lister.add("x", folder("y", "Y"))
			lister.add("y", file("z", "Z", 1))

			cfg.MaxDepth = 2
			result, err := New(lister, cfg).CollectAll(context.Background(), "drive-1")
			require.NoError(t, err)

			assert.Equal(t, []string{"X", "X/Y", "A"}, paths(result.Items))
			assert.True(t, result.Truncated)
			assert.NotContains(t, lister.calls, "y")
		})
	}
}

func TestCollectWithoutDepthLimitIsNotTruncated(t *testing.T) {
	lister := newFakeLister()
	lister.add(directory.RootItemID, folder("x", "X"))

	result, err := New(lister, DefaultConfig()).CollectAll(context.Background(), "drive-1")
	require.NoError(t, err)
	assert.False(t, result.Truncated)
}

func TestCollectRequestTimeoutFailsBranch(t *testing.T) {
	lister := newFakeLister()
	lister.delay = 50 * time.Millisecond

	result, err := New(lister, Config{Concurrency: 1, RequestTimeout: 5 * time.Millisecond}).CollectAll(context.Background(), "drive-1")
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.ErrorIs(t, result.Failures[0].Err, context.DeadlineExceeded)
}

func TestCollectCanceledContext(t *testing.T) {
	for name, cfg := range modes() {
		t.Run(name, func(t *testing.T) {
			lister := newFakeLister()
			lister.add(directory.RootItemID, folder("x", "X"), folder("y", "Y"))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			result, err := New(lister, cfg).CollectAll(ctx, "drive-1")
			assert.ErrorIs(t, err, context.Canceled)
			assert.NotNil(t, result)
		})
	}
}

func TestCollectStartsAtItem(t *testing.T) {
	lister := newFakeLister()
	lister.add(directory.RootItemID, folder("x", "X"))
	lister.add("x", file("a", "A", 1))

	result, err := New(lister, DefaultConfig()).Collect(context.Background(), directory.ContainerRef{DriveID: "drive-1", ItemID: "x"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, paths(result.Items))
	assert.Equal(t, 1, lister.callCount())
}

func TestNewNormalizesConfig(t *testing.T) {
	c := New(newFakeLister(), Config{Concurrency: 0, MaxDepth: -3})
	assert.Equal(t, DefaultConcurrency, c.concurrency)
	assert.Equal(t, 0, c.maxDepth)
}
