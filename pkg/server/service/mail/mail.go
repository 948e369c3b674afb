package mail

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/KyleBrandon/synapse/pkg/directory"
	"github.com/KyleBrandon/synapse/pkg/utils"
	"golang.org/x/sync/errgroup"
)

func NewHandler(mux *http.ServeMux, mail MailReader, concurrency int, timeout time.Duration) *Handler {
	if concurrency < 1 {
		concurrency = 1
	}

	h := &Handler{
		mail:        mail,
		concurrency: concurrency,
		timeout:     timeout,
	}
	h.RegisterRoutes(mux)

	return h
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /mail/messages/all", h.handlerAllMessagesGet)
	mux.HandleFunc("GET /mail/messages/{user_id}", h.handlerUserMessagesGet)
}

func (h *Handler) handlerUserMessagesGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerUserMessagesGet")
	defer slog.Debug("<<handlerUserMessagesGet")

	userID := r.PathValue("user_id")

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	messages, err := h.mail.ListMessages(ctx, userID)
	if err != nil {
		utils.RespondWithUpstreamError(w, r, "Failed to list messages", err)
		return
	}

	respondWithMessages(w, messages)
}

func (h *Handler) handlerAllMessagesGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerAllMessagesGet")
	defer slog.Debug("<<handlerAllMessagesGet")

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	users, err := h.mail.ListUsers(ctx)
	cancel()
	if err != nil {
		utils.RespondWithUpstreamError(w, r, "Failed to list users", err)
		return
	}

	respondWithMessages(w, h.collectMessages(r.Context(), users))
}

// collectMessages reads every mailbox with at most h.concurrency calls in
// flight. A mailbox that cannot be read is logged and left out.
func (h *Handler) collectMessages(ctx context.Context, users []directory.User) []directory.Message {
	perUser := make([][]directory.Message, len(users))

	var g errgroup.Group
	g.SetLimit(h.concurrency)
	for i, user := range users {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			callCtx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()

			messages, err := h.mail.ListMessages(callCtx, user.ID)
			if err != nil {
				slog.Warn("Skipping mailbox", "userID", user.ID, "userPrincipalName", user.UserPrincipalName, "error", err)
				return nil
			}

			perUser[i] = messages
			return nil
		})
	}
	_ = g.Wait()

	all := []directory.Message{}
	for _, messages := range perUser {
		all = append(all, messages...)
	}

	return all
}

func respondWithMessages(w http.ResponseWriter, messages []directory.Message) {
	if messages == nil {
		messages = []directory.Message{}
	}

	response := struct {
		Messages []directory.Message `json:"messages"`
	}{
		Messages: messages,
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}
