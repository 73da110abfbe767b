package handlers

import (
	"errors"
	"net/http"

	"techrobotics-site/internal/middlewares"
	"techrobotics-site/internal/models"
	"techrobotics-site/internal/presence"
	"techrobotics-site/internal/storage"

	"github.com/go-chi/chi/v5"
)

func GETAdminDashboardHandler(ctx *middlewares.AppContext) {
	active, err := ctx.Presence.ListActive(ctx)
	if err != nil {
		ctx.Logger.Error("failed to list active users", "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	if active == nil {
		active = []presence.ActiveUser{}
	}

	response := DashboardResponse{ActiveUsers: active}

	if response.Accounts, err = ctx.Storage.CountAccounts(ctx); err != nil {
		ctx.Logger.Error("failed to count accounts", "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	if response.Subscriptions, err = ctx.Storage.Count(ctx, models.CollectionSubscriptions); err != nil {
		ctx.Logger.Error("failed to count subscriptions", "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	if response.Contacts, err = ctx.Storage.Count(ctx, models.CollectionContacts); err != nil {
		ctx.Logger.Error("failed to count contacts", "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	ctx.WriteJSON(http.StatusOK, response)
}

func GETActiveUsersHandler(ctx *middlewares.AppContext) {
	active, err := ctx.Presence.ListActive(ctx)
	if err != nil {
		ctx.Logger.Error("failed to list active users", "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, "Failed to list active users")
		return
	}
	if active == nil {
		active = []presence.ActiveUser{}
	}
	ctx.WriteJSON(http.StatusOK, active)
}

func GETSubscriptionsHandler(ctx *middlewares.AppContext) {
	docs, ok := listCollection(ctx, models.CollectionSubscriptions)
	if !ok {
		return
	}

	subs := make([]models.Subscription, 0, len(docs))
	for _, doc := range docs {
		subs = append(subs, models.SubscriptionFromDocument(doc))
	}
	ctx.WriteJSON(http.StatusOK, subs)
}

func GETContactsHandler(ctx *middlewares.AppContext) {
	docs, ok := listCollection(ctx, models.CollectionContacts)
	if !ok {
		return
	}

	contacts := make([]models.ContactMessage, 0, len(docs))
	for _, doc := range docs {
		contacts = append(contacts, models.ContactMessageFromDocument(doc))
	}
	ctx.WriteJSON(http.StatusOK, contacts)
}

func DELETESubscriptionHandler(ctx *middlewares.AppContext) {
	deleteDocument(ctx, models.CollectionSubscriptions)
}

func DELETEContactHandler(ctx *middlewares.AppContext) {
	deleteDocument(ctx, models.CollectionContacts)
}

// listCollection reads the collection in the order given by ?order_by=field
// and ?direction=asc|desc, newest first by default.
func listCollection(ctx *middlewares.AppContext, collection string) ([]models.Document, bool) {
	query := ctx.Request.URL.Query()
	order := storage.OrderByNewest
	if field := query.Get("order_by"); field != "" {
		order = storage.OrderBy{Field: field, Descending: query.Get("direction") != "asc"}
	}

	docs, err := ctx.Storage.List(ctx, collection, order)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidOrderField) {
			ctx.SetJSONError(http.StatusBadRequest, "Invalid order_by field")
			return nil, false
		}
		ctx.Logger.Error("failed to list documents", "collection", collection, "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, "Failed to list "+collection)
		return nil, false
	}
	return docs, true
}

func deleteDocument(ctx *middlewares.AppContext, collection string) {
	id := chi.URLParam(ctx.Request, "id")
	if id == "" {
		ctx.SetJSONError(http.StatusBadRequest, "Missing id")
		return
	}

	if err := ctx.Storage.Delete(ctx, collection, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ctx.SetJSONError(http.StatusNotFound, "Not found")
			return
		}
		ctx.Logger.Error("failed to delete document", "collection", collection, "id", id, "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, "Failed to delete")
		return
	}

	if user, ok := ctx.GetUser(); ok {
		ctx.Logger.Info("document deleted", "collection", collection, "id", id, "admin", user.ID)
	}
	ctx.SetJSONStatus(http.StatusOK, "deleted")
}
