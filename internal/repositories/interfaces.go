package repositories

// ===== SHARED FILTER STRUCTS =====

// CourseFilters narrows admin course listings. TeacherID restricts the
// listing to one teacher's courses (teachers only see their own).
type CourseFilters struct {
	TeacherID  *uint  `json:"teacher_id"`
	CategoryID *uint  `json:"category_id"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
	SortBy     string `json:"sort_by"`    // "id", "name", "created_at"
	SortOrder  string `json:"sort_order"` // "asc", "desc"
}

type TransactionFilters struct {
	UserID *string `json:"user_id"`
	IsPaid *bool   `json:"is_paid"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

// DashboardStats backs the admin dashboard counters. TeacherID scopes the
// course count for teacher accounts; the other counters are owner-only.
type DashboardStats struct {
	TotalCourses      int64 `json:"total_courses"`
	TotalCategories   int64 `json:"total_categories"`
	TotalTeachers     int64 `json:"total_teachers"`
	TotalStudents     int64 `json:"total_students"`
	TotalTransactions int64 `json:"total_transactions"`
	PendingPayments   int64 `json:"pending_payments"`
}
