package sharepoint

import (
	"context"
	"net/http"
	"time"

	"github.com/KyleBrandon/synapse/pkg/directory"
	"github.com/KyleBrandon/synapse/pkg/utils"
)

func NewHandler(mux *http.ServeMux, sites SiteReader, timeout time.Duration) *Handler {
	h := &Handler{
		sites:   sites,
		timeout: timeout,
	}
	h.RegisterRoutes(mux)

	return h
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /sharepoint/sites", h.handlerSitesGet)
	mux.HandleFunc("GET /sharepoint/sites/{site_id}/lists", h.handlerListsGet)
	mux.HandleFunc("GET /sharepoint/sites/{site_id}/lists/{list_id}/items", h.handlerListItemsGet)
}

func (h *Handler) handlerSitesGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sites, err := h.sites.ListSites(ctx)
	if err != nil {
		utils.RespondWithUpstreamError(w, r, "Failed to list sites", err)
		return
	}

	response := struct {
		Sites []directory.Site `json:"sites"`
	}{
		Sites: nonNil(sites),
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) handlerListsGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lists, err := h.sites.ListLists(ctx, r.PathValue("site_id"))
	if err != nil {
		utils.RespondWithUpstreamError(w, r, "Failed to list site lists", err)
		return
	}

	response := struct {
		Lists []directory.List `json:"lists"`
	}{
		Lists: nonNil(lists),
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) handlerListItemsGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.sites.ListListItems(ctx, r.PathValue("site_id"), r.PathValue("list_id"))
	if err != nil {
		utils.RespondWithUpstreamError(w, r, "Failed to list list items", err)
		return
	}

	response := struct {
		Items []directory.ListItem `json:"items"`
	}{
		Items: nonNil(items),
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
