package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tutorhub/internal/pkg/response"
	"tutorhub/internal/repository"
	"tutorhub/internal/session"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/teachers", h.ListTeachers)
	rg.GET("/teachers/:id", h.GetTeacher)
	rg.GET("/teachers/:id/rating", h.GetRating)
	rg.GET("/lesson-types", h.ListLessonTypes)
}

// RegisterTeacherRoutes expects JWT and teacher-role middleware on rg.
func (h *Handler) RegisterTeacherRoutes(rg *gin.RouterGroup) {
	rg.PUT("/me/teacher", h.UpsertMyProfile)
}

// ListTeachers handles GET /teachers?specialty=&language=&min_rate=&max_rate=&q=&min_rating=&sort=
func (h *Handler) ListTeachers(c *gin.Context) {
	f := repository.TeacherFilter{
		Specialty: c.Query("specialty"),
		Language:  c.Query("language"),
		Search:    c.Query("q"),
		Sort:      c.DefaultQuery("sort", repository.TeacherSortRating),
	}

	for param, dst := range map[string]**decimal.Decimal{"min_rate": &f.MinRate, "max_rate": &f.MaxRate} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid "+param)
			return
		}
		*dst = &d
	}

	if raw := c.Query("min_rating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 5 {
			response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid min_rating")
			return
		}
		f.MinRating = v
	}

	switch f.Sort {
	case repository.TeacherSortRating, repository.TeacherSortNewest,
		repository.TeacherSortPriceAsc, repository.TeacherSortPriceDesc:
	default:
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid sort")
		return
	}

	f.Limit, f.Offset = response.Page(c, defaultLimit, maxLimit)

	teachers, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		response.Internal(c, err, "Failed to load teachers")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"teachers": teachers,
		"limit":    f.Limit,
		"offset":   f.Offset,
	})
}

func (h *Handler) GetTeacher(c *gin.Context) {
	id, ok := response.IDParam(c, "id")
	if !ok {
		return
	}
	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Teacher not found")
			return
		}
		response.Internal(c, err, "Failed to load teacher")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"teacher": t})
}

func (h *Handler) GetRating(c *gin.Context) {
	id, ok := response.IDParam(c, "id")
	if !ok {
		return
	}
	rating, err := h.service.GetRating(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, err, "Failed to load rating")
		return
	}
	response.Success(c, http.StatusOK, rating)
}

func (h *Handler) ListLessonTypes(c *gin.Context) {
	types, err := h.service.LessonTypes(c.Request.Context())
	if err != nil {
		response.Internal(c, err, "Failed to load lesson types")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lesson_types": types})
}

func (h *Handler) UpsertMyProfile(c *gin.Context) {
	sess, _ := session.FromGin(c)

	var req UpsertTeacherRequest
	if !response.BindJSON(c, &req) {
		return
	}

	t, err := h.service.UpsertMyTeacherProfile(c.Request.Context(), sess.UserID, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
			return
		}
		response.Internal(c, err, "Failed to save teacher profile")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"teacher": t})
}
