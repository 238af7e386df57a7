package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lac-hong-legacy/authguard/dto"
	"github.com/lac-hong-legacy/authguard/shared"
)

type AdminHandler struct {
	rateLimitSvc RateLimitAdminInterface
	guardSvc     LoginGuardInterface
	messageSvc   MessageAdminInterface
	archiveSvc   ArchiveAdminInterface
}

func NewAdminHandler(rateLimitSvc RateLimitAdminInterface, guardSvc LoginGuardInterface, messageSvc MessageAdminInterface, archiveSvc ArchiveAdminInterface) *AdminHandler {
	return &AdminHandler{
		rateLimitSvc: rateLimitSvc,
		guardSvc:     guardSvc,
		messageSvc:   messageSvc,
		archiveSvc:   archiveSvc,
	}
}

// @Summary Rate limit stats
// @Description Read the live counters for one identity
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param identity path string true "IP or identity to inspect"
// @Success 200 {object} shared.Response{data=dto.RateLimitStats}
// @Router /api/v1/admin/rate-limits/{identity} [get]
func (h *AdminHandler) GetRateLimitStats(c *fiber.Ctx) error {
	identity := c.Params("identity")
	if identity == "" {
		return shared.ResponseBadRequest(c, "identity is required")
	}

	stats, err := h.rateLimitSvc.GetStats(c.UserContext(), identity)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", stats)
}

// @Summary Clear rate limits for an identity
// @Description Drop every counter for one identity
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param identity path string true "IP or identity to clear"
// @Success 200 {object} shared.Response
// @Router /api/v1/admin/rate-limits/{identity} [delete]
func (h *AdminHandler) ClearRateLimits(c *fiber.Ctx) error {
	identity := c.Params("identity")
	if identity == "" {
		return shared.ResponseBadRequest(c, "identity is required")
	}

	if err := h.rateLimitSvc.ClearLimits(c.UserContext(), identity); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Rate limits cleared", nil)
}

// @Summary Clear all rate limits
// @Description Drop every rate limit counter in the store
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response
// @Router /api/v1/admin/rate-limits [delete]
func (h *AdminHandler) ClearAllRateLimits(c *fiber.Ctx) error {
	if err := h.rateLimitSvc.ClearAllLimits(c.UserContext()); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "All rate limits cleared", nil)
}

// @Summary Unblock an IP
// @Description Lift a login failure lockout immediately
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param ip path string true "IP address to unblock"
// @Success 200 {object} shared.Response
// @Router /api/v1/admin/ip-blocks/{ip} [delete]
func (h *AdminHandler) UnblockIP(c *fiber.Ctx) error {
	ip := c.Params("ip")
	if ip == "" {
		return shared.ResponseBadRequest(c, "ip is required")
	}

	if err := h.guardSvc.ClearBlock(ip); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "IP unblocked", nil)
}

// @Summary Set a message code
// @Description Create or update the display text for a reason code
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Reason code"
// @Success 200 {object} shared.Response
// @Router /api/v1/admin/messages/{code} [put]
func (h *AdminHandler) SetMessage(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return shared.ResponseBadRequest(c, "code is required")
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseBadRequest(c, "invalid request body")
	}
	if req.Content == "" {
		return shared.ResponseBadRequest(c, "content is required")
	}

	if err := h.messageSvc.Upsert(c.UserContext(), code, req.Content); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Message updated", nil)
}

// @Summary List audit archives
// @Description Enumerate archived login history objects
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param prefix query string false "Object name prefix filter"
// @Success 200 {object} shared.Response{data=[]dto.ArchiveObject}
// @Router /api/v1/admin/archives [get]
func (h *AdminHandler) ListArchives(c *fiber.Ctx) error {
	if !h.archiveSvc.Enabled() {
		return shared.ResponseJSON(c, http.StatusServiceUnavailable, "Archiving is disabled", nil)
	}

	objects, err := h.archiveSvc.ListArchives(c.Query("prefix"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", objects)
}

// @Summary Archive download link
// @Description Return a time-limited presigned URL for one archive object
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param object query string true "Archive object name"
// @Success 200 {object} shared.Response{data=dto.ArchiveURLResponse}
// @Router /api/v1/admin/archives/url [get]
func (h *AdminHandler) GetArchiveURL(c *fiber.Ctx) error {
	if !h.archiveSvc.Enabled() {
		return shared.ResponseJSON(c, http.StatusServiceUnavailable, "Archiving is disabled", nil)
	}

	objectName := c.Query("object")
	if objectName == "" {
		return shared.ResponseBadRequest(c, "object is required")
	}

	const linkTTL = 15 * time.Minute
	url, err := h.archiveSvc.ArchiveURL(objectName, linkTTL)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", dto.ArchiveURLResponse{
		Name:      objectName,
		URL:       url,
		ExpiresIn: int64(linkTTL.Seconds()),
	})
}
