package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/api/metrics"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

// QuestionHandler handles HTTP requests for the Q&A forum.
type QuestionHandler struct {
	service ports.QuestionService
}

func NewQuestionHandler(service ports.QuestionService) *QuestionHandler {
	return &QuestionHandler{service: service}
}

type askQuestionRequest struct {
	Title     string   `json:"title" validate:"required,min=5,max=200"`
	Body      string   `json:"body" validate:"required,min=10,max=10000"`
	SubjectID string   `json:"subject_id" validate:"omitempty"`
	Tags      []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

type answerRequest struct {
	Body string `json:"body" validate:"required,min=2,max=10000"`
}

type questionListResponse struct {
	Items      []domain.Question `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// List returns forum questions, filtered and paginated.
//
// @Summary      List questions
// @Tags         questions
// @Produce      json
// @Param        subject_id  query     string  false  "Filter by subject"
// @Param        search      query     string  false  "Search in title and body"
// @Param        page        query     int     false  "Page number"
// @Param        limit       query     int     false  "Page size"
// @Success      200         {object}  questionListResponse
// @Router       /api/questions [get]
func (h *QuestionHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.List(c.Request().Context(), ports.ListQuestionsInput{
		SubjectID: c.QueryParam("subject_id"),
		Search:    c.QueryParam("search"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, questionListResponse{
		Items:      result.Items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Get returns a single question with its answers and counts the view.
//
// @Summary      Get a question
// @Tags         questions
// @Produce      json
// @Param        id   path      string  true  "Question ID"
// @Success      200  {object}  domain.Question
// @Failure      404  {object}  map[string]string
// @Router       /api/questions/{id} [get]
func (h *QuestionHandler) Get(c echo.Context) error {
	question, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, question)
}

// Ask creates a new question.
//
// @Summary      Ask a question
// @Tags         questions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      askQuestionRequest  true  "Question"
// @Success      201   {object}  domain.Question
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/questions [post]
func (h *QuestionHandler) Ask(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req askQuestionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	question, err := h.service.Ask(c.Request().Context(), userID, ports.AskQuestionInput{
		Title:     req.Title,
		Body:      req.Body,
		SubjectID: req.SubjectID,
		Tags:      req.Tags,
	})
	if err != nil {
		return err
	}

	metrics.QuestionsAskedTotal.Inc()
	return c.JSON(http.StatusCreated, question)
}

// Answer posts an answer to a question.
//
// @Summary      Answer a question
// @Tags         questions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Question ID"
// @Param        body  body      answerRequest  true  "Answer"
// @Success      201   {object}  domain.Question
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/questions/{id}/answers [post]
func (h *QuestionHandler) Answer(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	question, err := h.service.Answer(c.Request().Context(), userID, c.Param("id"), req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, question)
}

// AcceptAnswer marks an answer accepted. Question author only.
//
// @Summary      Accept an answer
// @Tags         questions
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true  "Question ID"
// @Param        answerID  path      string  true  "Answer ID"
// @Success      200       {object}  domain.Question
// @Failure      403       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /api/questions/{id}/answers/{answerID}/accept [post]
func (h *QuestionHandler) AcceptAnswer(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	question, err := h.service.AcceptAnswer(c.Request().Context(), userID, c.Param("id"), c.Param("answerID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, question)
}

// Delete removes a question. Author or admin only.
//
// @Summary      Delete a question
// @Tags         questions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Question ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/questions/{id} [delete]
func (h *QuestionHandler) Delete(c echo.Context) error {
	userID, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), userID, role, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "question deleted"})
}
