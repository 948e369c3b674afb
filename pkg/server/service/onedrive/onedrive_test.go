package onedrive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/KyleBrandon/synapse/internal/database"
	"github.com/KyleBrandon/synapse/pkg/directory"
	"github.com/KyleBrandon/synapse/pkg/directory/collector"
	"github.com/KyleBrandon/synapse/pkg/runlog"
	"github.com/KyleBrandon/synapse/pkg/server/service/traversal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDrives struct {
	mu       sync.Mutex
	drives   map[string]*directory.Drive
	users    map[string]string
	sites    map[string]string
	children map[string][]directory.Child
	failures map[string]error
	listed   []string
}

func newFakeDrives() *fakeDrives {
	size := int64(10)
	return &fakeDrives{
		drives: map[string]*directory.Drive{
			"b!1": {ID: "b!1", Name: "Documents", DriveType: "documentLibrary"},
		},
		users: map[string]string{"adele": "b!1"},
		sites: map[string]string{"site-1": "b!1"},
		children: map[string][]directory.Child{
			directory.RootItemID: {
				{ID: "a", Name: "A.txt", Size: &size, IsFile: true},
				{ID: "b", Name: "B", IsFolder: true},
				{ID: "d", Name: "D", IsFolder: true},
			},
			"b": {{ID: "c", Name: "C.txt", Size: &size, IsFile: true}},
		},
		failures: map[string]error{
			"d": directory.NewStatusError(http.StatusForbidden, "failed to list children", nil),
		},
	}
}

func (f *fakeDrives) ListChildren(ctx context.Context, driveID, itemID string) ([]directory.Child, error) {
	f.mu.Lock()
	f.listed = append(f.listed, itemID)
	f.mu.Unlock()

	if err, ok := f.failures[itemID]; ok {
		return nil, err
	}
	return f.children[itemID], nil
}

func (f *fakeDrives) Drive(ctx context.Context, driveID string) (*directory.Drive, error) {
	if d, ok := f.drives[driveID]; ok {
		return d, nil
	}
	return nil, directory.NewError(directory.ErrNotFound, "drive not found", nil)
}

func (f *fakeDrives) UserDrive(ctx context.Context, userID string) (*directory.Drive, error) {
	return f.Drive(ctx, f.users[userID])
}

func (f *fakeDrives) SiteDrive(ctx context.Context, siteID string) (*directory.Drive, error) {
	return f.Drive(ctx, f.sites[siteID])
}

type fakeRunStore struct {
	runs []database.CreateTraversalRunParams
}

func (f *fakeRunStore) CreateTraversalRun(ctx context.Context, arg database.CreateTraversalRunParams) (database.TraversalRun, error) {
	f.runs = append(f.runs, arg)
	return database.TraversalRun(arg), nil
}

func serve(t *testing.T, drives DriveReader, runs *runlog.Recorder, path string) *httptest.ResponseRecorder {
	t.Helper()

	mux := http.NewServeMux()
	NewHandler(mux, drives, collector.Config{Concurrency: 2, RequestTimeout: time.Second}, runs)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var body T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDriveAllItems(t *testing.T) {
	drives := newFakeDrives()
	store := &fakeRunStore{}

	w := serve(t, drives, runlog.New(store), "/onedrive/drives/b!1/items/all")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[traversal.Response](t, w)
	assert.Equal(t, "b!1", body.DriveID)
	assert.Equal(t, "Documents", body.DriveName)
	assert.Equal(t, "documentLibrary", body.DriveType)
	assert.Empty(t, body.SiteID)
	assert.Equal(t, 4, body.TotalCount)

	paths := make([]string, 0, len(body.Items))
	for _, item := range body.Items {
		paths = append(paths, item.Path)
	}
	assert.Equal(t, []string{"A.txt", "B", "B/C.txt", "D"}, paths)

	require.Len(t, body.FailedBranches, 1)
	assert.Equal(t, "d", body.FailedBranches[0].ItemID)
	assert.Equal(t, "D", body.FailedBranches[0].Path)
	assert.False(t, body.Truncated)

	require.Len(t, store.runs, 1)
	assert.Equal(t, runlog.UpstreamGraph, store.runs[0].Upstream)
	assert.Equal(t, int64(4), store.runs[0].ItemCount)
	assert.Equal(t, int32(1), store.runs[0].FailedBranches)
}

func TestDriveNotFoundSkipsTraversal(t *testing.T) {
	drives := newFakeDrives()

	for _, path := range []string{
		"/onedrive/drives/missing/items/all",
		"/onedrive/users/nobody/items/all",
		"/onedrive/sites/nowhere/drive/items/all",
		"/onedrive/drives/missing/items/root",
	} {
		t.Run(path, func(t *testing.T) {
			w := serve(t, drives, nil, path)
			assert.Equal(t, http.StatusNotFound, w.Code)

			body := decode[map[string]string](t, w)
			assert.NotEmpty(t, body["error"])
		})
	}

	assert.Empty(t, drives.listed)
}

func TestSiteAllItemsCarriesSiteID(t *testing.T) {
	w := serve(t, newFakeDrives(), nil, "/onedrive/sites/site-1/drive/items/all")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[traversal.Response](t, w)
	assert.Equal(t, "site-1", body.SiteID)
	assert.Equal(t, "b!1", body.DriveID)
	assert.Equal(t, 4, body.TotalCount)
}

func TestUserAllItemsOmitsDriveFields(t *testing.T) {
	w := serve(t, newFakeDrives(), nil, "/onedrive/users/adele/items/all")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.NotContains(t, body, "drive_id")
	assert.Contains(t, body, "items")
	assert.Contains(t, body, "total_count")
	assert.Contains(t, body, "failed_branches")
	assert.Contains(t, body, "truncated")
}

func TestRootItems(t *testing.T) {
	drives := newFakeDrives()

	w := serve(t, drives, nil, "/onedrive/users/adele/items/root")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[traversal.ItemsResponse](t, w)
	require.Len(t, body.Items, 3)
	assert.Equal(t, "A.txt", body.Items[0].Path)
	assert.Equal(t, directory.KindFolder, body.Items[1].Kind)
	assert.Equal(t, []string{directory.RootItemID}, drives.listed)
}

func TestRootItemsUpstreamFailure(t *testing.T) {
	drives := newFakeDrives()
	drives.failures[directory.RootItemID] = directory.NewUpstreamError("failed to list children", context.DeadlineExceeded)

	w := serve(t, drives, nil, "/onedrive/drives/b!1/items/root")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestDriveMetadata(t *testing.T) {
	w := serve(t, newFakeDrives(), nil, "/onedrive/sites/site-1/drive")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[directory.Drive](t, w)
	assert.Equal(t, "Documents", body.Name)

	w = serve(t, newFakeDrives(), nil, "/onedrive/users/nobody")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAllItemsRootFailureStillSucceeds(t *testing.T) {
	drives := newFakeDrives()
	drives.failures[directory.RootItemID] = errors.New("boom")

	w := serve(t, drives, nil, "/onedrive/drives/b!1/items/all")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[traversal.Response](t, w)
	assert.Empty(t, body.Items)
	assert.Equal(t, 0, body.TotalCount)
	assert.Len(t, body.FailedBranches, 1)
}
