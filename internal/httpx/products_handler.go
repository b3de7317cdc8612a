package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-orders-api/internal/auth"
	"github.com/ariefcatur/go-orders-api/internal/products"
	"github.com/rs/zerolog"
)

type ProductStore interface {
	List(ctx context.Context) ([]products.Product, error)
	FindByID(ctx context.Context, id int64) (products.Product, error)
	Create(ctx context.Context, np products.NewProduct) (int64, error)
	Update(ctx context.Context, id int64, p products.Patch) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type ProductsHandler struct {
	Repo ProductStore
	Log  zerolog.Logger
}

type productIDResp struct {
	Message   string `json:"message"`
	ProductID int64  `json:"product_id"`
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.Repo.List(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("list products")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Repo.FindByID(r.Context(), id)
	if errors.Is(err, products.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Int64("product_id", id).Msg("find product")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	if !requireAdmin(w, caller) {
		return
	}
	var np products.NewProduct
	if err := decodeJSON(r, &np); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	id, err := h.Repo.Create(r.Context(), np)
	if err != nil {
		h.Log.Warn().Err(err).Msg("create product")
		writeMessage(w, http.StatusBadRequest, "Failed to add product")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "New product added.",
		"result":  map[string]int64{"product_id": id},
	})
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	if !requireAdmin(w, caller) {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var p products.Patch
	if err := decodeJSON(r, &p); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	updated, err := h.Repo.Update(r.Context(), id, p)
	if err != nil || !updated {
		writeMessage(w, http.StatusBadRequest, "Failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, productIDResp{Message: "Product updated", ProductID: id})
}

func (h *ProductsHandler) remove(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	if !requireAdmin(w, caller) {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	deleted, err := h.Repo.Delete(r.Context(), id)
	if err != nil || !deleted {
		writeMessage(w, http.StatusBadRequest, "Failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, productIDResp{Message: "Product deleted", ProductID: id})
}
