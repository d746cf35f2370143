package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/api/metrics"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

// maxUploadSize caps material uploads at 25 MiB.
const maxUploadSize = 25 << 20

// MaterialHandler handles HTTP requests for study materials.
type MaterialHandler struct {
	service ports.MaterialService
}

func NewMaterialHandler(service ports.MaterialService) *MaterialHandler {
	return &MaterialHandler{service: service}
}

type updateMaterialRequest struct {
	Title        string   `json:"title" validate:"omitempty,min=2,max=100"`
	Description  string   `json:"description" validate:"omitempty,max=500"`
	Tags         []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
	Difficulty   string   `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	AcademicYear string   `json:"academic_year" validate:"omitempty,max=20"`
	Semester     int      `json:"semester" validate:"omitempty,min=1,max=12"`
}

type materialListResponse struct {
	Items      []domain.Material `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type downloadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// List returns materials, filtered and paginated.
//
// @Summary      List materials
// @Tags         materials
// @Produce      json
// @Param        subject_id     query     string  false  "Filter by subject"
// @Param        material_type  query     string  false  "Filter by type"
// @Param        semester       query     int     false  "Filter by semester"
// @Param        difficulty     query     string  false  "Filter by difficulty"
// @Param        search         query     string  false  "Full-text search"
// @Param        sort           query     string  false  "Sort: created_at (default), views, title"
// @Param        page           query     int     false  "Page number"
// @Param        limit          query     int     false  "Page size"
// @Success      200            {object}  materialListResponse
// @Router       /api/materials [get]
func (h *MaterialHandler) List(c echo.Context) error {
	semester, _ := strconv.Atoi(c.QueryParam("semester"))
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.List(c.Request().Context(), ports.ListMaterialsInput{
		SubjectID:    c.QueryParam("subject_id"),
		MaterialType: c.QueryParam("material_type"),
		Semester:     semester,
		Difficulty:   c.QueryParam("difficulty"),
		Search:       c.QueryParam("search"),
		Sort:         c.QueryParam("sort"),
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, materialListResponse{
		Items:      result.Items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Get returns a single material and counts the view.
//
// @Summary      Get a material
// @Tags         materials
// @Produce      json
// @Param        id   path      string  true  "Material ID"
// @Success      200  {object}  domain.Material
// @Failure      404  {object}  map[string]string
// @Router       /api/materials/{id} [get]
func (h *MaterialHandler) Get(c echo.Context) error {
	material, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, material)
}

// Upload accepts a multipart form with the file plus metadata fields.
//
// @Summary      Upload a material
// @Tags         materials
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file           formData  file    true   "Material file"
// @Param        title          formData  string  true   "Title"
// @Param        subject_id     formData  string  true   "Subject ID"
// @Param        material_type  formData  string  true   "notes, assignment, question-paper, presentation, book, other"
// @Param        description    formData  string  false  "Description"
// @Success      201            {object}  domain.Material
// @Failure      400            {object}  map[string]string
// @Failure      404            {object}  map[string]string
// @Router       /api/materials [post]
func (h *MaterialHandler) Upload(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	title := strings.TrimSpace(c.FormValue("title"))
	subjectID := c.FormValue("subject_id")
	materialType := c.FormValue("material_type")
	if title == "" || subjectID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and subject_id are required")
	}
	if len(title) > 100 {
		return echo.NewHTTPError(http.StatusBadRequest, "title must be at most 100 characters")
	}
	if !domain.MaterialType(materialType).Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid material_type")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fileHeader.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file exceeds the 25MB limit")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	semester, _ := strconv.Atoi(c.FormValue("semester"))
	var tags []string
	if raw := c.FormValue("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	material, err := h.service.Upload(c.Request().Context(), userID, ports.UploadMaterialInput{
		Title:        title,
		Description:  c.FormValue("description"),
		SubjectID:    subjectID,
		MaterialType: materialType,
		Tags:         tags,
		Difficulty:   c.FormValue("difficulty"),
		AcademicYear: c.FormValue("academic_year"),
		Semester:     semester,
		Content:      src,
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
	})
	if err != nil {
		return err
	}

	metrics.MaterialsUploadedTotal.WithLabelValues(materialType).Inc()
	return c.JSON(http.StatusCreated, material)
}

// Update changes material metadata. Owner or admin only.
//
// @Summary      Update a material
// @Tags         materials
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Material ID"
// @Param        body  body      updateMaterialRequest  true  "Metadata fields"
// @Success      200   {object}  domain.Material
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/materials/{id} [put]
func (h *MaterialHandler) Update(c echo.Context) error {
	userID, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateMaterialRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	material, err := h.service.Update(c.Request().Context(), userID, role, c.Param("id"), ports.UpdateMaterialInput{
		Title:        req.Title,
		Description:  req.Description,
		Tags:         req.Tags,
		Difficulty:   req.Difficulty,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, material)
}

// Delete removes a material and its file. Owner or admin only.
//
// @Summary      Delete a material
// @Tags         materials
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Material ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/materials/{id} [delete]
func (h *MaterialHandler) Delete(c echo.Context) error {
	userID, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), userID, role, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "material deleted"})
}

// ToggleLike adds or removes the caller's like.
//
// @Summary      Toggle like on a material
// @Tags         materials
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Material ID"
// @Success      200  {object}  domain.Material
// @Failure      404  {object}  map[string]string
// @Router       /api/materials/{id}/like [post]
func (h *MaterialHandler) ToggleLike(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	material, err := h.service.ToggleLike(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, material)
}

// Download records the download and returns the file location.
//
// @Summary      Download a material
// @Tags         materials
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Material ID"
// @Success      200  {object}  downloadResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/materials/{id}/download [get]
func (h *MaterialHandler) Download(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	result, err := h.service.Download(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}

	metrics.MaterialDownloadsTotal.Inc()
	return c.JSON(http.StatusOK, downloadResponse{URL: result.URL, Filename: result.Filename})
}
