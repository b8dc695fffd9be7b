package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"store-directory/internal/flash"
	"store-directory/internal/logger"
	"store-directory/internal/middleware"
	"store-directory/internal/store/model"
	"store-directory/internal/store/service"
	"store-directory/internal/upload"
	"store-directory/internal/view"
	appErrors "store-directory/pkg/errors"
	"store-directory/pkg/utils"
)

type StoreHandler struct {
	service *service.StoreService
	photos  *upload.Processor
}

func NewHandler(service *service.StoreService, photos *upload.Processor) *StoreHandler {
	return &StoreHandler{service: service, photos: photos}
}

func (h *StoreHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/", h.HomePage)
	router.GET("/stores", h.GetStores)
	router.GET("/store/:slug", h.GetStoreBySlug)
	router.GET("/tags", h.GetStoresByTag)
	router.GET("/tags/:tag", h.GetStoresByTag)
}

// RegisterProtectedRoutes wires the routes behind the login gate.
func (h *StoreHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.GET("/add", h.AddStoreForm)
	router.POST("/add", h.CreateStore)
	router.POST("/add/:id", h.UpdateStore)
	router.GET("/stores/:id/edit", h.EditStore)
}

// RegisterAPIRoutes wires the JSON endpoints.
func (h *StoreHandler) RegisterAPIRoutes(router *gin.RouterGroup) {
	router.GET("/search", h.SearchStores)
}

func (h *StoreHandler) HomePage(c *gin.Context) {
	view.Render(c, http.StatusOK, "index.html", gin.H{"title": "Store Directory"})
}

func (h *StoreHandler) GetStores(c *gin.Context) {
	stores, err := h.service.List(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	view.Render(c, http.StatusOK, "stores.html", gin.H{
		"title":  "Stores",
		"stores": stores,
	})
}

func (h *StoreHandler) GetStoreBySlug(c *gin.Context) {
	store, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, appErrors.ErrStoreNotFound) {
			view.Render(c, http.StatusNotFound, "404.html", gin.H{"title": "Not Found"})
			return
		}
		h.renderError(c, err)
		return
	}
	view.Render(c, http.StatusOK, "store.html", gin.H{
		"title": store.Name,
		"store": store,
	})
}

func (h *StoreHandler) GetStoresByTag(c *gin.Context) {
	tag := c.Param("tag")

	stores, tags, err := h.service.StoresAndTags(c.Request.Context(), tag)
	if err != nil {
		h.renderError(c, err)
		return
	}

	view.Render(c, http.StatusOK, "tags.html", gin.H{
		"title":  "Tags",
		"tag":    tag,
		"tags":   tags,
		"stores": stores,
	})
}

func (h *StoreHandler) AddStoreForm(c *gin.Context) {
	view.Render(c, http.StatusOK, "editStore.html", gin.H{"title": "Add Store"})
}

func (h *StoreHandler) CreateStore(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	request, ok := h.bindStoreRequest(c, "/add")
	if !ok {
		return
	}

	store, err := h.service.Create(c.Request.Context(), user.ID, request)
	if err != nil {
		h.flashServiceError(c, err, "/add")
		return
	}

	flash.Add(c, flash.Success, fmt.Sprintf("Successfully created %s. Care to leave a review?", store.Name))
	c.Redirect(http.StatusFound, "/store/"+store.Slug)
}

func (h *StoreHandler) EditStore(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		view.Render(c, http.StatusNotFound, "404.html", gin.H{"title": "Not Found"})
		return
	}

	store, err := h.service.GetForEdit(c.Request.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, appErrors.ErrStoreNotFound):
			view.Render(c, http.StatusNotFound, "404.html", gin.H{"title": "Not Found"})
		case errors.Is(err, appErrors.ErrNotStoreOwner):
			view.Render(c, http.StatusForbidden, "error.html", gin.H{
				"title":   "Not allowed",
				"message": err.Error(),
			})
		default:
			h.renderError(c, err)
		}
		return
	}

	view.Render(c, http.StatusOK, "editStore.html", gin.H{
		"title": "Edit " + store.Name,
		"store": store,
	})
}

// UpdateStore applies the edit form. Ownership was checked when the form
// was served by EditStore; the update itself does not repeat the check.
func (h *StoreHandler) UpdateStore(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		view.Render(c, http.StatusNotFound, "404.html", gin.H{"title": "Not Found"})
		return
	}

	editPath := fmt.Sprintf("/stores/%s/edit", id)
	request, ok := h.bindStoreRequest(c, editPath)
	if !ok {
		return
	}

	store, err := h.service.Update(c.Request.Context(), id, request)
	if err != nil {
		if errors.Is(err, appErrors.ErrStoreNotFound) {
			view.Render(c, http.StatusNotFound, "404.html", gin.H{"title": "Not Found"})
			return
		}
		h.flashServiceError(c, err, editPath)
		return
	}

	flash.Add(c, flash.Success, fmt.Sprintf("Successfully updated %s.", store.Name))
	c.Redirect(http.StatusFound, editPath)
}

// SearchStores is the JSON text-search endpoint: top five stores by
// relevance, descending.
func (h *StoreHandler) SearchStores(c *gin.Context) {
	results, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		logger.Error("Store search failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "search failed")
		return
	}
	c.JSON(http.StatusOK, results)
}

// bindStoreRequest binds, normalizes and photo-processes the store form.
// On failure it has already flashed and redirected; callers just return.
func (h *StoreHandler) bindStoreRequest(c *gin.Context, backPath string) (*model.StoreRequest, bool) {
	var request model.StoreRequest
	if err := c.ShouldBind(&request); err != nil {
		flash.Add(c, flash.Error, "Invalid store details")
		c.Redirect(http.StatusFound, backPath)
		return nil, false
	}
	request.Normalize()

	file, err := c.FormFile("photo")
	switch {
	case err == nil:
		filename, err := h.photos.Process(file)
		if err != nil {
			if errors.Is(err, appErrors.ErrNotAnImage) {
				flash.Add(c, flash.Error, err.Error())
			} else {
				logger.Error("Photo upload failed",
					zap.String("request_id", middleware.GetRequestID(c)),
					zap.Error(err),
				)
				flash.Add(c, flash.Error, "Could not process that photo")
			}
			c.Redirect(http.StatusFound, backPath)
			return nil, false
		}
		request.Photo = &filename
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// No upload; nothing to do.
	default:
		flash.Add(c, flash.Error, "Invalid store details")
		c.Redirect(http.StatusFound, backPath)
		return nil, false
	}

	return &request, true
}

func (h *StoreHandler) flashServiceError(c *gin.Context, err error, backPath string) {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		flash.Add(c, flash.Error, appErr.Message)
		c.Redirect(http.StatusFound, backPath)
		return
	}
	h.renderError(c, err)
}

func (h *StoreHandler) renderError(c *gin.Context, err error) {
	logger.Error("Internal server error",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	view.Render(c, http.StatusInternalServerError, "error.html", gin.H{
		"title":   "Something went wrong",
		"message": "Something went wrong, please try again",
	})
}
