// Package http provides HTTP handlers for the API key vault. Every route acts on
// the collection of the user identified by IdentityMiddleware.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/httputil"
	customValidation "github.com/allisson/keyvault/internal/validation"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
	"github.com/allisson/keyvault/internal/vault/http/dto"
	vaultUseCase "github.com/allisson/keyvault/internal/vault/usecase"
)

// SecretHandler handles HTTP requests for API key operations.
type SecretHandler struct {
	vaultUseCase vaultUseCase.VaultUseCase
	logger       *slog.Logger
}

// NewSecretHandler creates a new secret handler with required dependencies.
func NewSecretHandler(vault vaultUseCase.VaultUseCase, logger *slog.Logger) *SecretHandler {
	return &SecretHandler{
		vaultUseCase: vault,
		logger:       logger,
	}
}

// SaveHandler encrypts and stores a new API key.
// POST /v1/secrets - Returns 201 Created with the record metadata (no value).
func (h *SecretHandler) SaveHandler(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req dto.SaveSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.vaultUseCase.Save(c.Request.Context(), userID, req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("ETag", formatETag(result.Revision))
	c.JSON(http.StatusCreated, dto.MapSaveResultToResponse(result))
}

// ListHandler decrypts and returns every API key of the user.
// GET /v1/secrets - Returns 200 OK. Records that fail to decrypt are listed under
// "failures" and do not fail the request. The ETag carries the collection revision.
func (h *SecretHandler) ListHandler(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	listing, err := h.vaultUseCase.ListAll(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("ETag", formatETag(listing.Revision))
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.MapListingToResponse(listing))
}

// DeleteHandler removes the API key at an index.
// DELETE /v1/secrets/:index - Returns 204 No Content. With If-Match the delete only
// applies when the collection revision still matches, otherwise 409 Conflict.
func (h *SecretHandler) DeleteHandler(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		httputil.HandleErrorGin(c, vaultDomain.ErrInvalidIndex, h.logger)
		return
	}

	revision, err := parseIfMatch(c.GetHeader("If-Match"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.vaultUseCase.DeleteAtRevision(c.Request.Context(), userID, index, revision); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteAllHandler removes every API key of the user.
// DELETE /v1/secrets?confirm=true - Returns 204 No Content, or 422 without confirm=true.
func (h *SecretHandler) DeleteAllHandler(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	if c.Query("confirm") != "true" {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("deleting all secrets requires confirm=true"),
			h.logger,
		)
		return
	}

	if err := h.vaultUseCase.DeleteAll(c.Request.Context(), userID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SecretHandler) userID(c *gin.Context) (string, bool) {
	userID, ok := GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return "", false
	}
	return userID, true
}

func formatETag(revision uint64) string {
	return strconv.Quote(strconv.FormatUint(revision, 10))
}

// parseIfMatch returns the revision named by an If-Match header. An empty header
// or "*" matches any revision.
func parseIfMatch(header string) (uint64, error) {
	header = strings.TrimSpace(header)
	if header == "" || header == "*" {
		return vaultDomain.AnyRevision, nil
	}

	tag := strings.Trim(strings.TrimPrefix(header, "W/"), `"`)
	revision, err := strconv.ParseUint(tag, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid If-Match header: expected a revision ETag")
	}
	return revision, nil
}
