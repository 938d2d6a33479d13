package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

type UserHandler struct {
	users    service.IUserService
	follows  service.IFollowService
	pageSize int
}

func NewUserHandler(users service.IUserService, follows service.IFollowService, pageSize int) *UserHandler {
	return &UserHandler{users: users, follows: follows, pageSize: pageSize}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.Register)
		users.GET("/me", middleware.RequireAuth(), h.Me)
		users.GET("/subscriptions", middleware.RequireAuth(), h.Subscriptions)
		users.POST("/set_password", h.SetPassword)
		users.GET("/:id", h.GetUser)
		users.POST("/:id/subscribe", h.Subscribe)
		users.DELETE("/:id/subscribe", h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	p, err := pageParams(c, h.pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	users, total, err := h.users.List(ctx, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.users.Codec(middleware.ViewerFrom(c)).ReadMany(ctx, users)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, total, out))
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	ctx := c.Request.Context()
	codec := h.users.Codec(middleware.ViewerFrom(c))
	user, err := codec.Write(ctx, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := codec.Read(ctx, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *UserHandler) Me(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	h.renderUser(c, viewer.UserID, viewer)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"), "user")
	if !ok {
		return
	}
	h.renderUser(c, id, middleware.ViewerFrom(c))
}

func (h *UserHandler) renderUser(c *gin.Context, id uuid.UUID, viewer *types.Viewer) {
	ctx := c.Request.Context()
	user, err := h.users.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.users.Codec(viewer).Read(ctx, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	viewer := middleware.ViewerFrom(c)
	if err := h.users.SetPassword(c.Request.Context(), viewer.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the caller follows. recipes_limit caps
// how many recipes are embedded per author.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	p, err := pageParams(c, h.pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	recipesLimit, err := queryInt(c, "recipes_limit", 0)
	if err != nil {
		respondError(c, err)
		return
	}

	subs, total, err := h.follows.Subscriptions(c.Request.Context(), middleware.ViewerFrom(c), p.Page, p.Limit, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, total, subs))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := parseID(c, c.Param("id"), "user")
	if !ok {
		return
	}
	recipesLimit, err := queryInt(c, "recipes_limit", 0)
	if err != nil {
		respondError(c, err)
		return
	}

	sub, err := h.follows.Follow(c.Request.Context(), middleware.ViewerFrom(c), authorID, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := parseID(c, c.Param("id"), "user")
	if !ok {
		return
	}

	if err := h.follows.Unfollow(c.Request.Context(), middleware.ViewerFrom(c).UserID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
