package repository

import (
	"context"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tutorhub/internal/domain"
)

const (
	TeacherSortNewest    = "newest"
	TeacherSortRating    = "rating"
	TeacherSortPriceAsc  = "price_asc"
	TeacherSortPriceDesc = "price_desc"
)

type TeacherFilter struct {
	Specialty string
	Language  string
	MinRate   *decimal.Decimal
	MaxRate   *decimal.Decimal
	Search    string
	MinRating float64
	Sort      string
	Limit     int
	Offset    int
}

type TeacherRepository struct {
	db *gorm.DB
}

func NewTeacherRepository(db *gorm.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

func (r *TeacherRepository) Create(ctx context.Context, t *domain.Teacher) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *TeacherRepository) Save(ctx context.Context, t *domain.Teacher) error {
	return r.db.WithContext(ctx).Omit("Profile").Save(t).Error
}

func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*domain.Teacher, error) {
	var t domain.Teacher
	if err := r.db.WithContext(ctx).Preload("Profile").First(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *TeacherRepository) GetByProfileID(ctx context.Context, profileID int64) (*domain.Teacher, error) {
	var t domain.Teacher
	if err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

const summaryColumns = `teachers.id, teachers.profile_id,
COALESCE(profiles.full_name, '') AS full_name,
COALESCE(profiles.avatar_url, '') AS avatar_url,
COALESCE(profiles.country, '') AS country,
COALESCE(teachers.bio, '') AS bio,
teachers.hourly_rate, teachers.currency, teachers.specialties, teachers.languages,
COALESCE(teachers.korean_level, '') AS korean_level,
teachers.years_experience,
COALESCE(ratings.avg_rating, 0) AS avg_rating,
COALESCE(ratings.total_reviews, 0) AS total_reviews,
teachers.created_at`

const ratingsJoin = `LEFT JOIN (
	SELECT teacher_id, AVG(rating) AS avg_rating, COUNT(*) AS total_reviews
	FROM reviews GROUP BY teacher_id
) ratings ON ratings.teacher_id = teachers.id`

// List returns active teachers matching f.
func (r *TeacherRepository) List(ctx context.Context, f TeacherFilter) ([]domain.TeacherSummary, error) {
	q := r.db.WithContext(ctx).
		Table("teachers").
		Select(summaryColumns).
		Joins("JOIN profiles ON profiles.id = teachers.profile_id").
		Joins(ratingsJoin).
		Where("teachers.is_active = ?", true)

	if f.Specialty != "" {
		q = q.Where("CAST(teachers.specialties AS TEXT) LIKE ?", jsonElementPattern(f.Specialty))
	}
	if f.Language != "" {
		q = q.Where("CAST(teachers.languages AS TEXT) LIKE ?", jsonElementPattern(f.Language))
	}
	if f.MinRate != nil {
		q = q.Where("teachers.hourly_rate >= ?", *f.MinRate)
	}
	if f.MaxRate != nil {
		q = q.Where("teachers.hourly_rate <= ?", *f.MaxRate)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(profiles.full_name) LIKE ? OR LOWER(COALESCE(teachers.bio, '')) LIKE ?", like, like)
	}
	if f.MinRating > 0 {
		q = q.Where("COALESCE(ratings.avg_rating, 0) >= ?", f.MinRating)
	}

	switch f.Sort {
	case TeacherSortRating:
		q = q.Order("avg_rating DESC").Order("total_reviews DESC")
	case TeacherSortPriceAsc:
		q = q.Order("teachers.hourly_rate ASC")
	case TeacherSortPriceDesc:
		q = q.Order("teachers.hourly_rate DESC")
	default:
		q = q.Order("teachers.created_at DESC")
	}
	q = q.Order("teachers.id ASC")

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var rows []domain.TeacherSummary
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AvgRating = round2(rows[i].AvgRating)
	}
	return rows, nil
}

// Rating is get_teacher_rating: average and count of the teacher's reviews.
func (r *TeacherRepository) Rating(ctx context.Context, teacherID int64) (*domain.TeacherRating, error) {
	var row struct {
		AvgRating    float64
		TotalReviews int64
	}

	db := r.db.WithContext(ctx)
	var err error
	if isPostgres(r.db) {
		err = db.Raw("SELECT avg_rating, total_reviews FROM get_teacher_rating(?)", teacherID).Scan(&row).Error
	} else {
		err = db.Raw(
			"SELECT COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS total_reviews FROM reviews WHERE teacher_id = ?",
			teacherID,
		).Scan(&row).Error
	}
	if err != nil {
		return nil, err
	}

	return &domain.TeacherRating{
		TeacherID:    teacherID,
		AvgRating:    round2(row.AvgRating),
		TotalReviews: row.TotalReviews,
	}, nil
}

// LessonTypes is get_lesson_types.
func (r *TeacherRepository) LessonTypes(ctx context.Context) ([]domain.LessonType, error) {
	var out []domain.LessonType
	db := r.db.WithContext(ctx)
	if isPostgres(r.db) {
		return out, db.Raw("SELECT * FROM get_lesson_types()").Scan(&out).Error
	}
	return out, db.Order("duration_minutes asc, name asc").Find(&out).Error
}

func (r *TeacherRepository) CreateLessonType(ctx context.Context, lt *domain.LessonType) error {
	return r.db.WithContext(ctx).Where(domain.LessonType{Name: lt.Name}).FirstOrCreate(lt).Error
}

func jsonElementPattern(v string) string {
	v = strings.NewReplacer(`%`, ``, `_`, ``, `"`, ``).Replace(strings.TrimSpace(v))
	return `%"` + v + `"%`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
