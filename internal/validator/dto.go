package validator

// CategoryCreateRequest carries the fields for creating a category. The
// slug is derived server-side; the icon arrives as a multipart file.
type CategoryCreateRequest struct {
	Name string `json:"name" form:"name" validate:"required,min=2,max=100"`
}

type CategoryUpdateRequest struct {
	Name *string `json:"name" form:"name" validate:"omitempty,min=2,max=100"`
}

// CourseCreateRequest creates a course under an existing category and
// teacher. Keypoints are short selling points shown on the detail page.
type CourseCreateRequest struct {
	Name        string   `json:"name" form:"name" validate:"required,min=2,max=150"`
	CategoryID  uint     `json:"category_id" form:"category_id" validate:"required"`
	TeacherID   uint     `json:"teacher_id" form:"teacher_id" validate:"required"`
	About       string   `json:"about" form:"about" validate:"required,min=10"`
	PathTrailer *string  `json:"path_trailer" form:"path_trailer" validate:"omitempty,url"`
	Keypoints   []string `json:"keypoints" form:"keypoints" validate:"omitempty,max=8,dive,min=3,max=200"`
}

type CourseUpdateRequest struct {
	Name        *string  `json:"name" form:"name" validate:"omitempty,min=2,max=150"`
	CategoryID  *uint    `json:"category_id" form:"category_id"`
	TeacherID   *uint    `json:"teacher_id" form:"teacher_id"`
	About       *string  `json:"about" form:"about" validate:"omitempty,min=10"`
	PathTrailer *string  `json:"path_trailer" form:"path_trailer" validate:"omitempty,url"`
	Keypoints   []string `json:"keypoints" form:"keypoints" validate:"omitempty,max=8,dive,min=3,max=200"`
}

type CourseVideoCreateRequest struct {
	Name      string `json:"name" form:"name" validate:"required,min=2,max=150"`
	PathVideo string `json:"path_video" form:"path_video" validate:"required,url"`
}

type CourseVideoUpdateRequest struct {
	Name      *string `json:"name" form:"name" validate:"omitempty,min=2,max=150"`
	PathVideo *string `json:"path_video" form:"path_video" validate:"omitempty,url"`
}

// TeacherCreateRequest promotes an existing user, looked up by email,
// into the teacher role.
type TeacherCreateRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}
