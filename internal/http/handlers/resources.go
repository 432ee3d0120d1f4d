package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prodsmart/backend/internal/config"
	"github.com/prodsmart/backend/internal/domain/resource"
	"github.com/prodsmart/backend/internal/http/middlewares"
	"github.com/prodsmart/backend/internal/repo"
	"github.com/prodsmart/backend/internal/store"
)

// ResourceRepo is what the handler needs from the owner-scoped engine.
type ResourceRepo interface {
	List(ctx context.Context, ownerID string) ([]store.Document, error)
	Create(ctx context.Context, ownerID string, payload map[string]any) (store.Document, error)
	Update(ctx context.Context, ownerID, id string, payload map[string]any) (store.Document, error)
	Delete(ctx context.Context, ownerID, id string) error
	DeleteAll(ctx context.Context, ownerID string) (int64, error)
}

// ResourcesHandler serves one collection; the router mounts five of them.
type ResourcesHandler struct {
	repo  ResourceRepo
	label string
}

func NewResourcesHandler(r ResourceRepo, label string) *ResourcesHandler {
	return &ResourcesHandler{repo: r, label: label}
}

func (h *ResourcesHandler) List(ctx *gin.Context) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	docs, err := h.repo.List(cctx, ownerID)

	if err != nil {
		RespondInternal(ctx, "Could not list "+h.label+"s")
		return
	}

	ctx.JSON(http.StatusOK, docs)
}

func (h *ResourcesHandler) Create(ctx *gin.Context) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	payload := DecodePayload(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	doc, err := h.repo.Create(cctx, ownerID, payload)

	if err != nil {
		var verr *resource.ValidationError

		if errors.As(err, &verr) {
			RespondBadRequest(ctx, verr.Error())
			return
		}

		RespondInternal(ctx, "Could not create "+h.label)
		return
	}

	ctx.JSON(http.StatusCreated, doc)
}

func (h *ResourcesHandler) Update(ctx *gin.Context) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	id := ctx.Param("id")
	payload := DecodePayload(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	doc, err := h.repo.Update(cctx, ownerID, id, payload)

	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			RespondNotFound(ctx, h.label+" not found")
			return
		}

		RespondInternal(ctx, "Could not update "+h.label)
		return
	}

	ctx.JSON(http.StatusOK, doc)
}

func (h *ResourcesHandler) Delete(ctx *gin.Context) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, ownerID, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			RespondNotFound(ctx, h.label+" not found")
			return
		}

		RespondInternal(ctx, "Could not delete "+h.label)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": h.label + " deleted"})
}

func (h *ResourcesHandler) DeleteAll(ctx *gin.Context) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// zero matches is still success
	_, err := h.repo.DeleteAll(cctx, ownerID)

	if err != nil {
		RespondInternal(ctx, "Could not delete "+h.label+"s")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "All " + h.label + "s deleted"})
}
