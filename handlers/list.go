package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"liist/common"
	"liist/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Lists interface {
	Add(ctx context.Context, ownerID, text string) (*models.ListItem, error)
	List(ctx context.Context, ownerID string) ([]models.ListItem, error)
	Get(ctx context.Context, ownerID string, id int64) (*models.ListItem, error)
	Update(ctx context.Context, ownerID string, id int64, text string) (*models.ListItem, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

// ListHandler serves the grocery list pages. Every method runs behind
// RequireSession and acts on the signed-in user's items only.
type ListHandler struct {
	lists Lists
	pages *Pages
}

func NewListHandler(lists Lists, pages *Pages) *ListHandler {
	return &ListHandler{lists: lists, pages: pages}
}

// Index handles GET /
func (h *ListHandler) Index(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	h.renderIndex(ctx, w, r, nil)
}

// Add handles POST /
func (h *ListHandler) Add(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := currentUser(ctx)

	var req models.ItemRequest
	err := decodeForm(r, &req)
	if err == nil {
		var item *models.ListItem
		item, err = h.lists.Add(ctx, user.ID, req.Text)
		if err == nil {
			logRequest(ctx, "info", "Item added", zap.Int64("item_id", item.ID))
			redirect(w, r, "/")
			return
		}
	}

	appErr := toAppError(err)
	if appErr.Code >= http.StatusInternalServerError {
		logRequest(ctx, "error", "Failed to add item", zap.Error(err))
	}
	h.renderIndex(ctx, w, r, []Flash{{Category: flashCategory(appErr), Message: appErr.Message}})
}

func (h *ListHandler) renderIndex(ctx context.Context, w http.ResponseWriter, r *http.Request, flashes []Flash) {
	user := currentUser(ctx)
	items, err := h.lists.List(ctx, user.ID)
	if err != nil {
		h.pages.RenderError(ctx, w, r, err)
		return
	}
	h.pages.Render(ctx, w, r, http.StatusOK, "index", &PageData{
		Title:   "myLiist",
		User:    user,
		Items:   items,
		Flashes: flashes,
	})
}

// Delete handles GET /delete/{id}
func (h *ListHandler) Delete(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := currentUser(ctx)
	id, err := itemID(r)
	if err == nil {
		err = h.lists.Delete(ctx, user.ID, id)
	}
	if err != nil {
		h.pages.RenderError(ctx, w, r, err)
		return
	}

	logRequest(ctx, "info", "Item deleted", zap.Int64("item_id", id))
	redirect(w, r, "/")
}

// ShowUpdate handles GET /update/{id}
func (h *ListHandler) ShowUpdate(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := currentUser(ctx)
	id, err := itemID(r)
	if err != nil {
		h.pages.RenderError(ctx, w, r, err)
		return
	}
	item, err := h.lists.Get(ctx, user.ID, id)
	if err != nil {
		h.pages.RenderError(ctx, w, r, err)
		return
	}
	h.pages.Render(ctx, w, r, http.StatusOK, "update", &PageData{Title: "Update item", User: user, Item: item})
}

// Update handles POST /update/{id}. Bad text re-renders the form; items
// that are missing or belong to someone else are a 404.
func (h *ListHandler) Update(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := currentUser(ctx)
	id, err := itemID(r)
	if err != nil {
		h.pages.RenderError(ctx, w, r, err)
		return
	}

	var req models.ItemRequest
	err = decodeForm(r, &req)
	if err == nil {
		_, err = h.lists.Update(ctx, user.ID, id, req.Text)
		if err == nil {
			logRequest(ctx, "info", "Item updated", zap.Int64("item_id", id))
			redirect(w, r, "/")
			return
		}
	}

	if !errors.Is(err, common.ErrValidation) {
		h.pages.RenderError(ctx, w, r, err)
		return
	}

	item, getErr := h.lists.Get(ctx, user.ID, id)
	if getErr != nil {
		h.pages.RenderError(ctx, w, r, getErr)
		return
	}
	appErr := toAppError(err)
	h.pages.Render(ctx, w, r, http.StatusOK, "update", &PageData{
		Title:   "Update item",
		User:    user,
		Item:    item,
		Flashes: []Flash{{Category: flashCategory(appErr), Message: appErr.Message}},
	})
}

// itemID parses the {id} route variable. Malformed ids name no item.
func itemID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("item id %q: %w", raw, common.ErrNotFound)
	}
	return id, nil
}
