package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greenmart/storefront/identity"
	"github.com/greenmart/storefront/utils"
)

// clientCookie identifies a browser across requests for the anonymous
// identity store. It is a device marker, not a credential.
const clientCookie = "gm_client"

// IdentityController exposes the anonymous commenter identity flow. None of
// these endpoints authenticate anything; they hand out a stable pseudo-user
// for unauthenticated commenting.
type IdentityController struct {
	store *identity.Store
}

// NewIdentityController wires the identity store.
func NewIdentityController(store *identity.Store) *IdentityController {
	return &IdentityController{store: store}
}

// RegisterOrLogin looks up an identity by email or creates a new one, and
// marks it current for this client.
func (i *IdentityController) RegisterOrLogin(ctx *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "name and valid email are required")
		return
	}

	id, created, err := i.store.RegisterOrLogin(ctx.Request.Context(), ensureClientID(ctx), req.Name, req.Email)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "identity store unavailable")
		return
	}
	utils.Success(ctx, gin.H{"identity": publicIdentity(id), "created": created})
}

// Me returns the client's current identity, or null data when none is set.
func (i *IdentityController) Me(ctx *gin.Context) {
	id, err := i.store.Current(ctx.Request.Context(), clientID(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "identity store unavailable")
		return
	}
	if id == nil {
		utils.Success(ctx, gin.H{"identity": nil})
		return
	}
	utils.Success(ctx, gin.H{"identity": publicIdentity(*id)})
}

// Logout clears the current-identity marker; the identity record survives.
func (i *IdentityController) Logout(ctx *gin.Context) {
	if err := i.store.Logout(ctx.Request.Context(), clientID(ctx)); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "identity store unavailable")
		return
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// publicIdentity strips the secret hash before a record leaves the gateway.
func publicIdentity(id identity.Identity) gin.H {
	return gin.H{
		"id":         id.ID,
		"name":       id.Name,
		"email":      id.Email,
		"created_at": id.CreatedAt,
	}
}

func clientID(ctx *gin.Context) string {
	if v, err := ctx.Cookie(clientCookie); err == nil && v != "" {
		return v
	}
	return ""
}

// ensureClientID returns the client marker, minting and setting the cookie
// when absent.
func ensureClientID(ctx *gin.Context) string {
	if v := clientID(ctx); v != "" {
		return v
	}
	v := uuid.NewString()
	ctx.SetCookie(clientCookie, v, 365*24*3600, "/", "", false, true)
	return v
}
