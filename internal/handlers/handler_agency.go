package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// agencyHandler handles agency CRUD and membership management.
type agencyHandler struct {
	agencyService portssvc.AgencySvcFacade
}

func registerAgencyRoutes(rg *gin.RouterGroup, agencyService portssvc.AgencySvcFacade) {
	h := &agencyHandler{agencyService: agencyService}

	agencies := rg.Group("/agencies")
	{
		agencies.POST("", h.createAgency)
		agencies.GET("", h.listUserAgencies)
		agencies.GET("/:agency_id", h.getAgency)
		agencies.GET("/:agency_id/users", h.listAgencyUsers)
		agencies.POST("/:agency_id/users", h.addUserToAgency)
	}
}

// createAgency godoc
// @Summary Create agency
// @Description Creates an agency with the caller as ADMIN and an active subscription on the chosen plan.
// @Tags agencies
// @Accept json
// @Produce json
// @Param agency body dto.CreateAgencyRequest true "Agency details"
// @Success 201 {object} dto.AgencyResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies [post]
func (h *agencyHandler) createAgency(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	agency, err := h.agencyService.CreateAgency(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToAgencyResponse(agency))
}

// listUserAgencies godoc
// @Summary List my agencies
// @Tags agencies
// @Produce json
// @Success 200 {array} dto.AgencyResponse
// @Security BearerAuth
// @Router /agencies [get]
func (h *agencyHandler) listUserAgencies(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	agencies, err := h.agencyService.ListUserAgencies(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListAgencyResponse(agencies))
}

// getAgency godoc
// @Summary Get agency
// @Tags agencies
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Success 200 {object} dto.AgencyResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id} [get]
func (h *agencyHandler) getAgency(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	agency, err := h.agencyService.GetAgencyByID(c.Request.Context(), c.Param("agency_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAgencyResponse(agency))
}

// listAgencyUsers godoc
// @Summary List agency members
// @Tags agencies
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Success 200 {array} dto.AgencyUserResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/users [get]
func (h *agencyHandler) listAgencyUsers(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	users, err := h.agencyService.ListAgencyUsers(c.Request.Context(), c.Param("agency_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListAgencyUserResponse(users))
}

// addUserToAgency godoc
// @Summary Add member to agency
// @Description Adds a user with the given role. Admin only.
// @Tags agencies
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param member body dto.AddUserToAgencyRequest true "Membership details"
// @Success 204 "No content"
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/users [post]
func (h *agencyHandler) addUserToAgency(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.AddUserToAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	if err := h.agencyService.AddUserToAgency(c.Request.Context(), c.Param("agency_id"), req, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
