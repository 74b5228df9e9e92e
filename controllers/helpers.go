package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/greenmart/storefront/api"
	"github.com/greenmart/storefront/utils"
)

// writeAPIError maps a backend client failure onto the response envelope.
// The process stays interactive after any single failed call.
func writeAPIError(ctx *gin.Context, err error) {
	var vErr *api.ValidationError
	var sErr *api.StatusError
	switch {
	case errors.Is(err, api.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
	case errors.Is(err, api.ErrUnauthorized):
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	case errors.As(err, &vErr):
		msg := vErr.Detail
		if msg == "" {
			msg = "validation failed"
		}
		utils.Error(ctx, http.StatusBadRequest, 40020, msg)
	case errors.As(err, &sErr):
		utils.Error(ctx, http.StatusBadGateway, 50210, "backend error")
	default:
		utils.Error(ctx, http.StatusBadGateway, 50211, "backend unreachable")
	}
}

func parsePagination(pageStr, sizeStr string, defaultSize int) (int, int) {
	page := 1
	pageSize := defaultSize
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

// matchSubstring reports whether the needle occurs in any field,
// case-insensitively. An empty needle matches everything.
func matchSubstring(needle string, fields ...string) bool {
	if needle == "" {
		return true
	}
	needle = strings.ToLower(needle)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// confirmRequested gates destructive actions behind an explicit confirm flag.
func confirmRequested(ctx *gin.Context) bool {
	v := ctx.Query("confirm")
	return v == "true" || v == "1"
}

func parseID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid id")
		return 0, false
	}
	return uint(id), true
}
