package traversal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/KyleBrandon/synapse/pkg/directory"
	"github.com/KyleBrandon/synapse/pkg/directory/collector"
	"github.com/KyleBrandon/synapse/pkg/runlog"
	"github.com/KyleBrandon/synapse/pkg/utils"
)

func NewRunner(lister directory.ChildLister, cfg collector.Config, runs *runlog.Recorder, upstream string) *Runner {
	return &Runner{
		collector: collector.New(lister, cfg),
		lister:    lister,
		runs:      runs,
		upstream:  upstream,
	}
}

// RespondWithAll walks the whole drive and writes the traversal response.
// The drive must already be resolved; response carries the route specific
// drive fields.
func (rn *Runner) RespondWithAll(w http.ResponseWriter, r *http.Request, driveID string, response Response) {
	slog.Debug(">>Runner.RespondWithAll")
	defer slog.Debug("<<Runner.RespondWithAll")

	root := directory.Root(driveID)
	startedAt := time.Now()

	result, err := rn.collector.Collect(r.Context(), root)
	if err != nil {
		utils.RespondWithUpstreamError(w, r, "Traversal did not complete", directory.NewUpstreamError("collect "+driveID, err))
		return
	}

	if len(result.Failures) > 0 {
		slog.Warn("Traversal finished with failed branches", "request_id", utils.RequestIDFromContext(r.Context()), "driveID", driveID, "error", result.Err())
	}

	utils.RespondWithJSON(w, http.StatusOK, NewResponse(result, response))
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	rn.runs.Record(r.Context(), rn.upstream, root, result, startedAt)
}

// RespondWithTopLevel lists the immediate children of the drive root.
func (rn *Runner) RespondWithTopLevel(w http.ResponseWriter, r *http.Request, driveID string, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	children, err := rn.lister.ListChildren(ctx, driveID, directory.RootItemID)
	if err != nil {
		utils.RespondWithUpstreamError(w, r, "Failed to list root items", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, ItemsResponse{Items: TopLevel(children)})
}

// NewResponse fills the traversal fields of response from result.
func NewResponse(result *collector.Result, response Response) Response {
	response.Items = result.Items
	if response.Items == nil {
		response.Items = []directory.Entry{}
	}

	response.TotalCount = result.TotalCount
	response.Truncated = result.Truncated

	response.FailedBranches = make([]FailedBranch, 0, len(result.Failures))
	for _, f := range result.Failures {
		response.FailedBranches = append(response.FailedBranches, FailedBranch{
			ItemID: f.Container.ItemID,
			Path:   f.Path,
			Error:  f.Err.Error(),
		})
	}

	return response
}

// TopLevel converts a root listing, each entry's path is its name.
func TopLevel(children []directory.Child) []directory.Entry {
	items := make([]directory.Entry, 0, len(children))
	for _, child := range children {
		items = append(items, directory.NewEntry(child, child.Name))
	}

	return items
}
