package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/dto"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/service"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/response"
)

// SearchHandler wires the public service search endpoint.
type SearchHandler struct {
	service *service.SearchService
}

// NewSearchHandler creates a new handler.
func NewSearchHandler(svc *service.SearchService) *SearchHandler {
	return &SearchHandler{service: svc}
}

// Search godoc
// @Summary Search bookable services
// @Description Filter by title, category, city, state and price range
// @Tags Search
// @Produce json
// @Param title query string false "Title substring"
// @Param category query string false "Shop category"
// @Param city query string false "City"
// @Param state query string false "State"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sortBy query string false "Sort column: price, title or duration"
// @Param order query string false "ASC or DESC"
// @Success 200 {object} response.Envelope
// @Router /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	filter := dto.SearchFilter{
		Title:    c.Query("title"),
		Category: c.Query("category"),
		City:     c.Query("city"),
		State:    c.Query("state"),
		SortBy:   c.DefaultQuery("sortBy", "price"),
		Order:    c.DefaultQuery("order", "ASC"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if raw := c.Query("minPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinPrice = &v
		}
	}
	if raw := c.Query("maxPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MaxPrice = &v
		}
	}

	result, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result.Items, &result.Pagination)
}
