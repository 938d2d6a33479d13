package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// CatalogHandler serves tags and ingredients. Both lists are small and
// returned unpaginated.
type CatalogHandler struct {
	catalog service.ICatalogService
}

func NewCatalogHandler(catalog service.ICatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tags", h.ListTags)
	router.GET("/tags/:id", h.GetTag)
	router.GET("/ingredients", h.ListIngredients)
	router.GET("/ingredients/:id", h.GetIngredient)
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.catalog.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	codec := h.catalog.TagCodec()
	out := make([]types.TagResponse, 0, len(tags))
	for i := range tags {
		tag, err := codec.Read(c.Request.Context(), &tags[i])
		if err != nil {
			respondError(c, err)
			return
		}
		out = append(out, *tag)
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"), "tag")
	if !ok {
		return
	}
	tag, err := h.catalog.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.catalog.TagCodec().Read(c.Request.Context(), tag)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListIngredients supports ?name= as a case-insensitive prefix filter.
func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.catalog.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	codec := h.catalog.IngredientCodec()
	out := make([]types.IngredientResponse, 0, len(ingredients))
	for i := range ingredients {
		ingredient, err := codec.Read(c.Request.Context(), &ingredients[i])
		if err != nil {
			respondError(c, err)
			return
		}
		out = append(out, *ingredient)
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"), "ingredient")
	if !ok {
		return
	}
	ingredient, err := h.catalog.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.catalog.IngredientCodec().Read(c.Request.Context(), ingredient)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
