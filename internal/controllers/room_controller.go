package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type RoomController struct {
	service  *services.RoomService
	validate *validator.Validate
}

func NewRoomController(service *services.RoomService) *RoomController {
	return &RoomController{service: service, validate: NewValidator()}
}

// GET /api/v1/rooms?status=
func (c *RoomController) ListHandler(w http.ResponseWriter, r *http.Request) {
	var status *models.RoomStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := models.RoomStatus(s)
		status = &st
	}
	rooms, err := c.service.List(r.Context(), status)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, rooms)
}

// GET /api/v1/rooms/{roomNumber}
func (c *RoomController) GetHandler(w http.ResponseWriter, r *http.Request) {
	roomNumber, err := pathInt(r, "roomNumber")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	room, err := c.service.Get(r.Context(), roomNumber)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, room)
}

// POST /api/v1/rooms
func (c *RoomController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "CreateRoomHandler")

	adminID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CreateRoomRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	room, err := c.service.Create(r.Context(), adminID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("roomNumber", room.RoomNumber).Info("Room created")
	utils.RespondWithJSON(w, http.StatusCreated, room)
}

// PATCH /api/v1/rooms/{roomNumber}
func (c *RoomController) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	roomNumber, err := pathInt(r, "roomNumber")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.UpdateRoomRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	room, err := c.service.Update(r.Context(), adminID, roomNumber, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, room)
}

// POST /api/v1/rooms/{roomNumber}/photo
func (c *RoomController) UploadPhotoHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	roomNumber, err := pathInt(r, "roomNumber")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if err := parseMultipart(w, r); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	image, closeFn, err := formImage(r, "photo", true)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	defer closeFn()

	room, err := c.service.UploadPhoto(r.Context(), adminID, roomNumber, image.ContentType, image.Body)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, room)
}

// DELETE /api/v1/rooms/{roomNumber}
func (c *RoomController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	roomNumber, err := pathInt(r, "roomNumber")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if err := c.service.Delete(r.Context(), adminID, roomNumber); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/rooms/{roomNumber}/release
func (c *RoomController) ReleaseHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	roomNumber, err := pathInt(r, "roomNumber")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	room, err := c.service.Release(r.Context(), adminID, roomNumber)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, room)
}
