package onedrive

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

func NewHandler(mux *http.ServeMux, drives DriveReader, cfg collector.Config, runs *runlog.Recorder) *Handler {
	h := &Handler{
		drives:  drives,
		runner:  traversal.NewRunner(drives, cfg, runs, runlog.UpstreamGraph),
		timeout: cfg.RequestTimeout,
	}
	if h.timeout <= 0 {
		h.timeout = collector.DefaultRequestTimeout
	}
	h.RegisterRoutes(mux)

	return h
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /onedrive/users/{user_id}", h.handlerUserDriveGet)
	mux.HandleFunc("GET /onedrive/users/{user_id}/items/root", h.handlerUserRootGet)
	mux.HandleFunc("GET /onedrive/users/{user_id}/items/all", h.handlerUserAllGet)

	mux.HandleFunc("GET /onedrive/drives/{drive_id}", h.handlerDriveGet)
	mux.HandleFunc("GET /onedrive/drives/{drive_id}/items/root", h.handlerDriveRootGet)
	mux.HandleFunc("GET /onedrive/drives/{drive_id}/items/all", h.handlerDriveAllGet)

	mux.HandleFunc("GET /onedrive/sites/{site_id}/drive", h.handlerSiteDriveGet)
	mux.HandleFunc("GET /onedrive/sites/{site_id}/drive/items/root", h.handlerSiteRootGet)
	mux.HandleFunc("GET /onedrive/sites/{site_id}/drive/items/all", h.handlerSiteAllGet)
}

func (h *Handler) handlerUserDriveGet(w http.ResponseWriter, r *http.Request) {
	h.respondWithDrive(w, r, h.drives.UserDrive, r.PathValue("user_id"))
}

func (h *Handler) handlerUserRootGet(w http.ResponseWriter, r *http.Request) {
	drive, ok := h.resolve(w, r, h.drives.UserDrive, r.PathValue("user_id"))
	if !ok {
		return
	}

	h.runner.RespondWithTopLevel(w, r, drive.ID, h.timeout)
}

func (h *Handler) handlerUserAllGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerUserAllGet")
	defer slog.Debug("<<handlerUserAllGet")

	drive, ok := h.resolve(w, r, h.drives.UserDrive, r.PathValue("user_id"))
	if !ok {
		return
	}

	h.runner.RespondWithAll(w, r, drive.ID, traversal.Response{})
}

func (h *Handler) handlerDriveGet(w http.ResponseWriter, r *http.Request) {
	h.respondWithDrive(w, r, h.drives.Drive, r.PathValue("drive_id"))
}

func (h *Handler) handlerDriveRootGet(w http.ResponseWriter, r *http.Request) {
	drive, ok := h.resolve(w, r, h.drives.Drive, r.PathValue("drive_id"))
	if !ok {
		return
	}

	h.runner.RespondWithTopLevel(w, r, drive.ID, h.timeout)
}

func (h *Handler) handlerDriveAllGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerDriveAllGet")
	defer slog.Debug("<<handlerDriveAllGet")

	drive, ok := h.resolve(w, r, h.drives.Drive, r.PathValue("drive_id"))
	if !ok {
		return
	}

	h.runner.RespondWithAll(w, r, drive.ID, traversal.Response{
		DriveID:   drive.ID,
		DriveName: drive.Name,
		DriveType: drive.DriveType,
	})
}

func (h *Handler) handlerSiteDriveGet(w http.ResponseWriter, r *http.Request) {
	h.respondWithDrive(w, r, h.drives.SiteDrive, r.PathValue("site_id"))
}

func (h *Handler) handlerSiteRootGet(w http.ResponseWriter, r *http.Request) {
	drive, ok := h.resolve(w, r, h.drives.SiteDrive, r.PathValue("site_id"))
	if !ok {
		return
	}

	h.runner.RespondWithTopLevel(w, r, drive.ID, h.timeout)
}

func (h *Handler) handlerSiteAllGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerSiteAllGet")
	defer slog.Debug("<<handlerSiteAllGet")

	siteID := r.PathValue("site_id")
	drive, ok := h.resolve(w, r, h.drives.SiteDrive, siteID)
	if !ok {
		return
	}

	h.runner.RespondWithAll(w, r, drive.ID, traversal.Response{
		SiteID:    siteID,
		DriveID:   drive.ID,
		DriveName: drive.Name,
		DriveType: drive.DriveType,
	})
}

func (h *Handler) respondWithDrive(w http.ResponseWriter, r *http.Request, resolve resolveFunc, id string) {
	drive, ok := h.resolve(w, r, resolve, id)
	if !ok {
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, drive)
}

// resolve looks up the drive before any listing, a missing drive ends the request.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, resolve resolveFunc, id string) (*directory.Drive, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	drive, err := resolve(ctx, id)
	if err != nil {
		utils.RespondWithUpstreamError(w, r, "Failed to get drive", err)
		return nil, false
	}

	return drive, true
}
