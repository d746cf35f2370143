package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

// SubjectHandler handles HTTP requests for the subject catalogue.
type SubjectHandler struct {
	service ports.SubjectService
}

func NewSubjectHandler(service ports.SubjectService) *SubjectHandler {
	return &SubjectHandler{service: service}
}

type subjectRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=200"`
	Code        string   `json:"code" validate:"required,min=2,max=20"`
	Description string   `json:"description" validate:"omitempty,max=2000"`
	Department  string   `json:"department" validate:"required,max=200"`
	Semester    int      `json:"semester" validate:"required,min=1,max=12"`
	Credits     int      `json:"credits" validate:"omitempty,min=1,max=10"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

type subjectListResponse struct {
	Items      []domain.Subject `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// List returns the subject catalogue, filtered and paginated.
//
// @Summary      List subjects
// @Tags         subjects
// @Produce      json
// @Param        department  query     string  false  "Filter by department"
// @Param        semester    query     int     false  "Filter by semester"
// @Param        search      query     string  false  "Search by name or code"
// @Param        page        query     int     false  "Page number"
// @Param        limit       query     int     false  "Page size"
// @Success      200         {object}  subjectListResponse
// @Router       /api/subjects [get]
func (h *SubjectHandler) List(c echo.Context) error {
	semester, _ := strconv.Atoi(c.QueryParam("semester"))
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.List(c.Request().Context(), ports.ListSubjectsInput{
		Department: c.QueryParam("department"),
		Semester:   semester,
		Search:     c.QueryParam("search"),
		Sort:       c.QueryParam("sort"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, subjectListResponse{
		Items:      result.Items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Get returns a single subject.
//
// @Summary      Get a subject
// @Tags         subjects
// @Produce      json
// @Param        id   path      string  true  "Subject ID"
// @Success      200  {object}  domain.Subject
// @Failure      404  {object}  map[string]string
// @Router       /api/subjects/{id} [get]
func (h *SubjectHandler) Get(c echo.Context) error {
	subject, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, subject)
}

// Create adds a subject to the catalogue. Admin only.
//
// @Summary      Create a subject
// @Tags         subjects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      subjectRequest  true  "Subject details"
// @Success      201   {object}  domain.Subject
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/subjects [post]
func (h *SubjectHandler) Create(c echo.Context) error {
	_, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req subjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	subject, err := h.service.Create(c.Request().Context(), role, ports.CreateSubjectInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Department:  req.Department,
		Semester:    req.Semester,
		Credits:     req.Credits,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, subject)
}

// Update changes subject fields. Admin only.
//
// @Summary      Update a subject
// @Tags         subjects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Subject ID"
// @Param        body  body      subjectRequest  true  "Subject fields"
// @Success      200   {object}  domain.Subject
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/subjects/{id} [put]
func (h *SubjectHandler) Update(c echo.Context) error {
	_, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req subjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	subject, err := h.service.Update(c.Request().Context(), role, c.Param("id"), ports.CreateSubjectInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Department:  req.Department,
		Semester:    req.Semester,
		Credits:     req.Credits,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, subject)
}

// Delete removes a subject with no materials. Admin only.
//
// @Summary      Delete a subject
// @Tags         subjects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Subject ID"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/subjects/{id} [delete]
func (h *SubjectHandler) Delete(c echo.Context) error {
	_, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), role, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "subject deleted"})
}
