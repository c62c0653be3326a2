package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hauntedadmin/internal/common"
	"hauntedadmin/internal/repositories"
	"hauntedadmin/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	maxAvatarBytes  = 5 << 20
	avatarURLExpiry = 15 * time.Minute
)

// MemberHandlers handles member-related HTTP requests
type MemberHandlers struct {
	memberSvc services.MemberService
	avatarSvc services.AvatarService
}

// NewMemberHandlers creates a new member handlers instance
func NewMemberHandlers(memberSvc services.MemberService, avatarSvc services.AvatarService) *MemberHandlers {
	return &MemberHandlers{
		memberSvc: memberSvc,
		avatarSvc: avatarSvc,
	}
}

// CreateMember creates a new member
func (h *MemberHandlers) CreateMember(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.CreateMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	view, err := h.memberSvc.Create(ctx, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, view)
}

// GetMember retrieves a member with its derived lifecycle fields
func (h *MemberHandlers) GetMember(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid member ID")
	}

	view, err := h.memberSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Member not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve member")
	}

	return c.JSON(http.StatusOK, view)
}

// ListMembers lists members with optional plan/status filtering and pagination
func (h *MemberHandlers) ListMembers(c echo.Context) error {
	ctx := c.Request().Context()

	filters := repositories.MemberFilters{}
	if plan := c.QueryParam("plan"); plan != "" {
		filters.PlanName = &plan
	}
	if c.QueryParam("include_deleted") == "true" {
		filters.IncludeDeleted = true
	}

	rawLimit, _ := strconv.Atoi(c.QueryParam("limit"))
	rawOffset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(rawLimit, rawOffset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	filters.Limit = limit
	filters.Offset = offset

	views, err := h.memberSvc.List(ctx, filters)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list members")
	}

	// Status is derived from dates, so it is filtered after classification
	// rather than in SQL.
	if status := c.QueryParam("status"); status != "" {
		filtered := make([]*services.MemberView, 0, len(views))
		for _, v := range views {
			if strings.EqualFold(v.LifecycleStatus, status) {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"members": views,
		"total":   len(views),
		"limit":   limit,
		"offset":  offset,
	})
}

// UpdateMember applies partial updates to a member
func (h *MemberHandlers) UpdateMember(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid member ID")
	}

	var req services.UpdateMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	view, err := h.memberSvc.Update(ctx, id, &req)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Member not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, view)
}

// ExtendMember pushes a member's end date forward by a day count or to an
// explicit new date
func (h *MemberHandlers) ExtendMember(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid member ID")
	}

	var req services.ExtendMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	view, err := h.memberSvc.Extend(ctx, id, &req)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Member not found")
		}
		// Invalid-input errors carry field-level messages already.
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, view)
}

// DeleteMember soft-deletes a member
func (h *MemberHandlers) DeleteMember(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid member ID")
	}

	if err := h.memberSvc.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Member not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Member deleted successfully",
	})
}

// RestoreMember brings a soft-deleted member back
func (h *MemberHandlers) RestoreMember(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid member ID")
	}

	view, err := h.memberSvc.Restore(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Member not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, view)
}

// PurgeMember permanently removes a soft-deleted member
func (h *MemberHandlers) PurgeMember(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid member ID")
	}

	view, err := h.memberSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Member not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve member")
	}

	if err := h.memberSvc.HardDelete(ctx, id); err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Member not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Best effort: the row is gone either way.
	if view.AvatarObject != nil {
		if err := h.avatarSvc.DeleteAvatar(ctx, *view.AvatarObject); err != nil {
			log.Printf("WARN: failed to delete avatar object %s: %v", *view.AvatarObject, err)
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Member purged successfully",
	})
}

// UploadAvatar stores a profile picture for the member and records the
// object reference
func (h *MemberHandlers) UploadAvatar(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid member ID")
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return common.SendValidationError(c, "avatar", "an avatar file is required")
	}
	if fileHeader.Size > maxAvatarBytes {
		return common.SendValidationError(c, "avatar", "avatar must be 5MB or smaller")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read avatar file")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	objectName, err := h.avatarSvc.UploadAvatar(ctx, id, file, fileHeader.Size, contentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store avatar")
	}

	if err := h.memberSvc.SetAvatar(ctx, id, objectName); err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Member not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to record avatar")
	}

	url, err := h.avatarSvc.GetAvatarURL(objectName, avatarURLExpiry)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate avatar URL")
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"avatar_object": objectName,
		"url":           url,
	})
}

// GetAvatarURL hands out a short-lived presigned URL for the member's avatar
func (h *MemberHandlers) GetAvatarURL(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid member ID")
	}

	view, err := h.memberSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Member not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve member")
	}
	if view.AvatarObject == nil {
		return common.SendNotFoundError(c, "Avatar")
	}

	url, err := h.avatarSvc.GetAvatarURL(*view.AvatarObject, avatarURLExpiry)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate avatar URL")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"url": url,
	})
}
