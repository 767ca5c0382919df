package controllers

import (
	"bufio"
	"errors"
	"net/http"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

// parseMultipart caps the body and parses the form.
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes)
	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &utils.AppError{StatusCode: http.StatusRequestEntityTooLarge, Code: utils.ErrCodeInvalidPayload, Message: "Upload exceeds 16 MiB", Err: err}
		}
		return &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeInvalidPayload, Message: "Invalid multipart form", Err: err}
	}
	return nil
}

// formImage returns the named file part, or nil when it is absent and not
// required. The caller closes the returned closer.
func formImage(r *http.Request, field string, required bool) (*services.ImageUpload, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) && !required {
			return nil, func() {}, nil
		}
		return nil, nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeValidation, Message: "Field '" + field + "' must be an image file", Err: err}
	}

	br := bufio.NewReader(file)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		head, _ := br.Peek(512)
		contentType = http.DetectContentType(head)
	}
	return &services.ImageUpload{ContentType: contentType, Body: br}, func() { _ = file.Close() }, nil
}
