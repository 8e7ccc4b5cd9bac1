package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

// DatasetHandler exposes dataset upload and inspection endpoints.
type DatasetHandler struct {
	service *service.DatasetService
}

// NewDatasetHandler constructs the handler.
func NewDatasetHandler(svc *service.DatasetService) *DatasetHandler {
	return &DatasetHandler{service: svc}
}

// Upload godoc
// @Summary Upload a dataset as four CSV files or a JSON payload
// @Description Multipart form fields: courses, instructors, rooms, timeslots. Alternatively a JSON body with the same collections.
// @Tags Datasets
// @Accept mpfd
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /datasets [post]
func (h *DatasetHandler) Upload(c *gin.Context) {
	if c.ContentType() == "application/json" {
		var payload dto.DatasetPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid dataset payload"))
			return
		}
		summary, err := h.service.UploadPayload(payload)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, summary)
		return
	}

	courses, err := formFile(c, "courses")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer courses.Close()
	instructors, err := formFile(c, "instructors")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer instructors.Close()
	rooms, err := formFile(c, "rooms")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rooms.Close()
	timeslots, err := formFile(c, "timeslots")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer timeslots.Close()

	summary, err := h.service.UploadCSV(courses, instructors, rooms, timeslots)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, summary)
}

// Get godoc
// @Summary Get a stored dataset summary with its integrity report
// @Tags Datasets
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} response.Envelope
// @Router /datasets/{id} [get]
func (h *DatasetHandler) Get(c *gin.Context) {
	summary, err := h.service.Summary(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

func formFile(c *gin.Context, field string) (multipart.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing form file: "+field)
	}
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable form file: "+field)
	}
	return file, nil
}
