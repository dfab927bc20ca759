package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
)

// mockStore is shared in-memory state behind the mock repositories. It
// stamps created_at/updated_at through its clock so ordering-sensitive
// queries (latest paid transaction) behave like the real thing.
type mockStore struct {
	mu sync.Mutex

	now func() time.Time

	users         map[string]*models.User
	teachers      map[uint]*models.Teacher
	nextTeacherID uint
	transactions  map[uint]*models.SubscribeTransaction
	nextTxID      uint
	categories    map[uint]*models.Category
	nextCatID     uint
	courses       map[uint]*models.Course
	nextCourseID  uint
	videos        map[uint]*models.CourseVideo
	nextVideoID   uint
	enrollments   map[uint]map[string]bool
}

func newMockStore() *mockStore {
	return &mockStore{
		now:          time.Now,
		users:        make(map[string]*models.User),
		teachers:     make(map[uint]*models.Teacher),
		transactions: make(map[uint]*models.SubscribeTransaction),
		categories:   make(map[uint]*models.Category),
		courses:      make(map[uint]*models.Course),
		videos:       make(map[uint]*models.CourseVideo),
		enrollments:  make(map[uint]map[string]bool),
	}
}

func (st *mockStore) addUser(id, name, email string, role models.UserRole) *models.User {
	st.mu.Lock()
	defer st.mu.Unlock()
	u := &models.User{ID: id, Name: name, Email: email, Role: role}
	st.users[id] = u
	return u
}

type mockRepository struct{ st *mockStore }

func newMockRepository(st *mockStore) repositories.Repository {
	return &mockRepository{st: st}
}

func (m *mockRepository) User() repositories.UserRepository         { return &mockUserRepo{m.st} }
func (m *mockRepository) Teacher() repositories.TeacherRepository   { return &mockTeacherRepo{m.st} }
func (m *mockRepository) Category() repositories.CategoryRepository { return &mockCategoryRepo{m.st} }
func (m *mockRepository) Course() repositories.CourseRepository     { return &mockCourseRepo{m.st} }
func (m *mockRepository) Transaction() repositories.SubscribeTransactionRepository {
	return &mockTransactionRepo{m.st}
}
func (m *mockRepository) Dashboard() repositories.DashboardRepository {
	return &mockDashboardRepo{m.st}
}

// ===== USER =====

type mockUserRepo struct{ st *mockStore }

func (r *mockUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.users[user.ID] = user
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	u, ok := r.st.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, u := range r.st.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []*models.User
	for _, u := range r.st.users {
		if filters.Role != "" && u.Role != filters.Role {
			continue
		}
		copied := *u
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *mockUserRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	_, ok := r.st.users[id]
	return ok, nil
}

func (r *mockUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, u := range r.st.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockUserRepo) UpdateRoleCAS(ctx context.Context, tx *gorm.DB, id string, from, to models.UserRole) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	u, ok := r.st.users[id]
	if !ok || u.Role != from {
		return 0, nil
	}
	u.Role = to
	return 1, nil
}

// ===== TEACHER =====

// mockTeacherRepo mirrors the production semantics: Delete soft-deletes,
// reads skip retired rows, and the unique index on user_id only covers
// live rows so a demoted user can be promoted again.
type mockTeacherRepo struct{ st *mockStore }

func (r *mockTeacherRepo) Create(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, t := range r.st.teachers {
		if t.UserID == teacher.UserID && !t.DeletedAt.Valid {
			return gorm.ErrDuplicatedKey
		}
	}
	r.st.nextTeacherID++
	teacher.ID = r.st.nextTeacherID
	teacher.CreatedAt = r.st.now()
	copied := *teacher
	r.st.teachers[teacher.ID] = &copied
	return nil
}

func (r *mockTeacherRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	t, ok := r.st.teachers[id]
	if !ok || t.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	if u, ok := r.st.users[t.UserID]; ok {
		copied.User = *u
	}
	return &copied, nil
}

func (r *mockTeacherRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Teacher, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, t := range r.st.teachers {
		if t.UserID == userID && !t.DeletedAt.Valid {
			copied := *t
			if u, ok := r.st.users[t.UserID]; ok {
				copied.User = *u
			}
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockTeacherRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	t, ok := r.st.teachers[id]
	if !ok || t.DeletedAt.Valid {
		return gorm.ErrRecordNotFound
	}
	t.DeletedAt = gorm.DeletedAt{Time: r.st.now(), Valid: true}
	return nil
}

func (r *mockTeacherRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Teacher, int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []*models.Teacher
	for _, t := range r.st.teachers {
		if t.DeletedAt.Valid {
			continue
		}
		copied := *t
		if u, ok := r.st.users[t.UserID]; ok {
			copied.User = *u
		}
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockTeacherRepo) ExistsByUserID(ctx context.Context, tx *gorm.DB, userID string) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, t := range r.st.teachers {
		if t.UserID == userID && !t.DeletedAt.Valid {
			return true, nil
		}
	}
	return false, nil
}

// ===== TRANSACTION =====

type mockTransactionRepo struct{ st *mockStore }

func (r *mockTransactionRepo) Create(ctx context.Context, tx *gorm.DB, transaction *models.SubscribeTransaction) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.nextTxID++
	transaction.ID = r.st.nextTxID
	transaction.CreatedAt = r.st.now()
	transaction.UpdatedAt = transaction.CreatedAt
	copied := *transaction
	r.st.transactions[transaction.ID] = &copied
	return nil
}

func (r *mockTransactionRepo) getLocked(id uint) (*models.SubscribeTransaction, error) {
	t, ok := r.st.transactions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	if u, ok := r.st.users[t.UserID]; ok {
		copied.User = *u
	}
	return &copied, nil
}

func (r *mockTransactionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.SubscribeTransaction, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.getLocked(id)
}

func (r *mockTransactionRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.SubscribeTransaction, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.getLocked(id)
}

func (r *mockTransactionRepo) MarkPaid(ctx context.Context, tx *gorm.DB, id uint, startDate time.Time) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	t, ok := r.st.transactions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.IsPaid = true
	start := startDate
	t.SubscriptionStartDate = &start
	t.UpdatedAt = r.st.now()
	return nil
}

func (r *mockTransactionRepo) LatestPaidByUser(ctx context.Context, tx *gorm.DB, userID string) (*models.SubscribeTransaction, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var paid []*models.SubscribeTransaction
	for _, t := range r.st.transactions {
		if t.UserID == userID && t.IsPaid {
			paid = append(paid, t)
		}
	}
	if len(paid) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sort.Slice(paid, func(i, j int) bool {
		if !paid[i].UpdatedAt.Equal(paid[j].UpdatedAt) {
			return paid[i].UpdatedAt.After(paid[j].UpdatedAt)
		}
		return paid[i].ID > paid[j].ID
	})
	copied := *paid[0]
	return &copied, nil
}

func (r *mockTransactionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.TransactionFilters) ([]*models.SubscribeTransaction, int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []*models.SubscribeTransaction
	for _, t := range r.st.transactions {
		if filters.UserID != nil && t.UserID != *filters.UserID {
			continue
		}
		if filters.IsPaid != nil && t.IsPaid != *filters.IsPaid {
			continue
		}
		copied := *t
		if u, ok := r.st.users[t.UserID]; ok {
			copied.User = *u
		}
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

// ===== CATEGORY =====

type mockCategoryRepo struct{ st *mockStore }

func (r *mockCategoryRepo) Create(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.nextCatID++
	category.ID = r.st.nextCatID
	copied := *category
	r.st.categories[category.ID] = &copied
	return nil
}

func (r *mockCategoryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Category, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	c, ok := r.st.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *mockCategoryRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Category, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, c := range r.st.categories {
		if c.Slug == slug {
			copied := *c
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockCategoryRepo) Update(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.categories[category.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *category
	r.st.categories[category.ID] = &copied
	return nil
}

func (r *mockCategoryRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.categories[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.st.categories, id)
	return nil
}

func (r *mockCategoryRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []*models.Category
	for _, c := range r.st.categories {
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockCategoryRepo) ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *uint) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, c := range r.st.categories {
		if c.Slug == slug && (excludeID == nil || c.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

// ===== COURSE =====

type mockCourseRepo struct{ st *mockStore }

func (r *mockCourseRepo) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.nextCourseID++
	course.ID = r.st.nextCourseID
	copied := *course
	r.st.courses[course.ID] = &copied
	return nil
}

func (r *mockCourseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	c, ok := r.st.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *mockCourseRepo) GetBySlugWithDetails(ctx context.Context, tx *gorm.DB, slug string) (*models.Course, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, c := range r.st.courses {
		if c.Slug == slug {
			copied := *c
			copied.Videos = nil
			for _, v := range r.st.videos {
				if v.CourseID == c.ID {
					copied.Videos = append(copied.Videos, *v)
				}
			}
			sort.Slice(copied.Videos, func(i, j int) bool { return copied.Videos[i].ID < copied.Videos[j].ID })
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockCourseRepo) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *course
	r.st.courses[course.ID] = &copied
	return nil
}

func (r *mockCourseRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.st.courses, id)
	return nil
}

func (r *mockCourseRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []*models.Course
	for _, c := range r.st.courses {
		if filters.TeacherID != nil && c.TeacherID != *filters.TeacherID {
			continue
		}
		if filters.CategoryID != nil && c.CategoryID != *filters.CategoryID {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockCourseRepo) ListByCategory(ctx context.Context, tx *gorm.DB, categoryID uint) ([]*models.Course, error) {
	courses, _, err := r.List(ctx, tx, repositories.CourseFilters{CategoryID: &categoryID})
	return courses, err
}

func (r *mockCourseRepo) ReplaceKeypoints(ctx context.Context, tx *gorm.DB, courseID uint, names []string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	c, ok := r.st.courses[courseID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Keypoints = nil
	for i, name := range names {
		c.Keypoints = append(c.Keypoints, models.CourseKeypoint{ID: uint(i + 1), Name: name, CourseID: courseID})
	}
	return nil
}

func (r *mockCourseRepo) EnrollStudent(ctx context.Context, tx *gorm.DB, courseID uint, userID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.enrollments[courseID] == nil {
		r.st.enrollments[courseID] = make(map[string]bool)
	}
	r.st.enrollments[courseID][userID] = true
	return nil
}

func (r *mockCourseRepo) IsEnrolled(ctx context.Context, tx *gorm.DB, courseID uint, userID string) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.st.enrollments[courseID][userID], nil
}

func (r *mockCourseRepo) CreateVideo(ctx context.Context, tx *gorm.DB, video *models.CourseVideo) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.nextVideoID++
	video.ID = r.st.nextVideoID
	copied := *video
	r.st.videos[video.ID] = &copied
	return nil
}

func (r *mockCourseRepo) GetVideoByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CourseVideo, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	v, ok := r.st.videos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *v
	return &copied, nil
}

func (r *mockCourseRepo) UpdateVideo(ctx context.Context, tx *gorm.DB, video *models.CourseVideo) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.videos[video.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *video
	r.st.videos[video.ID] = &copied
	return nil
}

func (r *mockCourseRepo) DeleteVideo(ctx context.Context, tx *gorm.DB, id uint) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.videos[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.st.videos, id)
	return nil
}

// ===== DASHBOARD =====

type mockDashboardRepo struct{ st *mockStore }

func (r *mockDashboardRepo) GetStats(ctx context.Context, tx *gorm.DB, teacherID *uint) (*repositories.DashboardStats, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	stats := &repositories.DashboardStats{
		TotalCategories:   int64(len(r.st.categories)),
		TotalTeachers:     int64(len(r.st.teachers)),
		TotalTransactions: int64(len(r.st.transactions)),
	}
	for _, c := range r.st.courses {
		if teacherID == nil || c.TeacherID == *teacherID {
			stats.TotalCourses++
		}
	}
	for _, u := range r.st.users {
		if u.Role == models.RoleStudent {
			stats.TotalStudents++
		}
	}
	for _, t := range r.st.transactions {
		if !t.IsPaid {
			stats.PendingPayments++
		}
	}
	return stats, nil
}
