package gdrive

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/synapse/pkg/directory"
	"github.com/KyleBrandon/synapse/pkg/directory/collector"
	"github.com/KyleBrandon/synapse/pkg/runlog"
	"github.com/KyleBrandon/synapse/pkg/server/service/traversal"
	"github.com/KyleBrandon/synapse/pkg/utils"
)

// NewHandler registers the Google Drive routes. Only called when a service
// account key is configured.
func NewHandler(mux *http.ServeMux, drives DriveReader, cfg collector.Config, runs *runlog.Recorder) *Handler {
	h := &Handler{
		drives:  drives,
		runner:  traversal.NewRunner(drives, cfg, runs, runlog.UpstreamGDrive),
		timeout: cfg.RequestTimeout,
	}
	if h.timeout <= 0 {
		h.timeout = collector.DefaultRequestTimeout
	}
	h.RegisterRoutes(mux)

	return h
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /gdrive/drives/{drive_id}/items/root", h.handlerRootGet)
	mux.HandleFunc("GET /gdrive/drives/{drive_id}/items/all", h.handlerAllGet)
}

func (h *Handler) handlerRootGet(w http.ResponseWriter, r *http.Request) {
	drive, ok := h.resolve(w, r)
	if !ok {
		return
	}

	h.runner.RespondWithTopLevel(w, r, drive.ID, h.timeout)
}

func (h *Handler) handlerAllGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>gdrive.handlerAllGet")
	defer slog.Debug("<<gdrive.handlerAllGet")

	drive, ok := h.resolve(w, r)
	if !ok {
		return
	}

	h.runner.RespondWithAll(w, r, drive.ID, traversal.Response{
		DriveID:   drive.ID,
		DriveName: drive.Name,
		DriveType: drive.DriveType,
	})
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) (*directory.Drive, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	drive, err := h.drives.DriveInfo(ctx, r.PathValue("drive_id"))
	if err != nil {
		utils.RespondWithUpstreamError(w, r, "Failed to get drive", err)
		return nil, false
	}

	return drive, true
}
