package dtos

// CreateAdvertisementRequest is read from multipart form fields; the image
// travels alongside it as a file part.
type CreateAdvertisementRequest struct {
	Title       string `validate:"required,min=3,max=200"`
	Description string `validate:"required,min=3,max=4000"`
	Price       *int64 `validate:"omitempty,gte=0"`
	Contact     string `validate:"required,min=3,max=200"`
}
