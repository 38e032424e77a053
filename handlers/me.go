package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"medipal/db"
	"medipal/logger"
	"medipal/middleware"
	"medipal/models"
	"medipal/services"
)

// Handler serves the authenticated per-user record endpoints.
type Handler struct {
	store *db.Store
	prov  *services.Provisioner
	log   *logger.Logger
	now   func() time.Time
}

func New(store *db.Store, prov *services.Provisioner, log *logger.Logger, now func() time.Time) *Handler {
	return &Handler{store: store, prov: prov, log: log, now: now}
}

// GetMe returns the caller's user, profile and quota records, creating
// them on first sight. The document is persisted even on a plain read so
// newly provisioned records are committed.
func (h *Handler) GetMe(c *gin.Context) {
	identity := middleware.Identity(c)

	var bundle services.Bundle
	_, err := h.store.Update(func(doc *models.Document) error {
		bundle = h.prov.Ensure(doc, identity)
		return nil
	})
	if err != nil {
		h.log.Error("store access failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage unavailable"})
		return
	}

	plan := bundle.Quota.Plan
	if plan == "" {
		plan = "free"
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    bundle.User,
		"profile": bundle.Profile,
		"plan":    plan,
		"quota":   bundle.Quota,
	})
}

// Fields decode as any so a caller may send any scalar; absent fields stay
// nil and are left untouched.
type profilePatch struct {
	Name   any `json:"name"`
	Age    any `json:"age"`
	Gender any `json:"gender"`
}

// PatchProfile updates the fields present in the request body and bumps
// the profile's updatedAt unconditionally. An age that does not parse as a
// number is stored as null rather than rejected.
func (h *Handler) PatchProfile(c *gin.Context) {
	identity := middleware.Identity(c)

	var patch profilePatch
	if err := c.ShouldBindJSON(&patch); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var profile *models.Profile
	_, err := h.store.Update(func(doc *models.Document) error {
		profile = h.prov.Ensure(doc, identity).Profile

		if patch.Name != nil {
			profile.Name = trimmedString(patch.Name)
		}
		if patch.Age != nil {
			profile.Age = toNumber(patch.Age)
		}
		if patch.Gender != nil {
			profile.Gender = trimmedString(patch.Gender)
		}
		profile.UpdatedAt = h.now()
		return nil
	})
	if err != nil {
		h.log.Error("store access failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// trimmedString coerces a decoded JSON scalar to a trimmed string.
func trimmedString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// toNumber parses a decoded JSON scalar as a number, or nil when it does
// not parse.
func toNumber(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}
