package main

import (
	"context"
	"errors"
	"flag"
	"math/rand/v2"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tutorhub/internal/config"
	"tutorhub/internal/database"
	"tutorhub/internal/domain"
	"tutorhub/internal/pkg/logger"
	"tutorhub/internal/repository"
)

type seedTeacher struct {
	email       string
	name        string
	rate        int64
	level       string
	years       int
	specialties []string
	bio         string
}

var lessonTypes = []domain.LessonType{
	{Name: "trial", Description: "Short introductory lesson", DurationMinutes: 30},
	{Name: "conversation", Description: "Free speaking practice", DurationMinutes: 60},
	{Name: "grammar", Description: "Structured grammar lesson", DurationMinutes: 60},
	{Name: "topik", Description: "TOPIK exam preparation", DurationMinutes: 90},
}

var teachers = []seedTeacher{
	{"minji.kim@tutorhub.test", "Kim Minji", 90, "native", 6, []string{"conversation", "pronunciation"}, "Seoul native, focuses on everyday speech."},
	{"junho.lee@tutorhub.test", "Lee Junho", 120, "native", 9, []string{"grammar", "topik"}, "TOPIK examiner for five years."},
	{"sora.park@tutorhub.test", "Park Sora", 70, "native", 3, []string{"beginners", "hangul"}, "Patient with absolute beginners."},
	{"noura.alharbi@tutorhub.test", "Noura Alharbi", 60, "TOPIK 6", 4, []string{"beginners", "conversation"}, "Teaches Korean in Arabic."},
}

var students = []string{"sara@tutorhub.test", "faisal@tutorhub.test", "lama@tutorhub.test"}

// seed fills an empty database with demo teachers, students and weekly
// availability. Rows that already exist are left alone.
func main() {
	password := flag.String("password", "password123", "password for every seeded account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.AppEnv)
	defer func() { _ = log.Sync() }()
	ctx := context.Background()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if err := database.Migrate(ctx, db, log); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}
	repos := repository.New(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("hash password", zap.Error(err))
	}

	for i := range lessonTypes {
		if err := repos.Teachers.CreateLessonType(ctx, &lessonTypes[i]); err != nil {
			log.Fatal("create lesson type", zap.String("name", lessonTypes[i].Name), zap.Error(err))
		}
	}

	for _, email := range students {
		p := &domain.Profile{Email: email, PasswordHash: string(hash), Role: domain.RoleStudent, FullName: email, Country: "SA", NativeLanguage: "arabic"}
		if _, err := createProfile(ctx, repos, p); err != nil {
			log.Fatal("create student", zap.String("email", email), zap.Error(err))
		}
	}

	created := 0
	for _, st := range teachers {
		p := &domain.Profile{Email: st.email, PasswordHash: string(hash), Role: domain.RoleTeacher, FullName: st.name}
		isNew, err := createProfile(ctx, repos, p)
		if err != nil {
			log.Fatal("create teacher profile", zap.String("email", st.email), zap.Error(err))
		}
		if !isNew {
			continue
		}

		err = repos.Transaction(ctx, func(tx *repository.Repositories) error {
			t := &domain.Teacher{
				ProfileID:       p.ID,
				Bio:             st.bio,
				HourlyRate:      decimal.NewFromInt(st.rate),
				Currency:        "SAR",
				Specialties:     st.specialties,
				Languages:       []string{"korean", "arabic", "english"},
				KoreanLevel:     st.level,
				YearsExperience: st.years,
				IsActive:        true,
			}
			if err := tx.Teachers.Create(ctx, t); err != nil {
				return err
			}
			for _, w := range weeklyWindows(t.ID) {
				if err := tx.Availability.Create(ctx, &w); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Fatal("create teacher", zap.String("email", st.email), zap.Error(err))
		}
		created++
	}

	log.Info("seed completed",
		zap.Int("lesson_types", len(lessonTypes)),
		zap.Int("students", len(students)),
		zap.Int("teachers_created", created),
	)
}

// createProfile reports false when the email is already registered and
// loads the existing row into p.
func createProfile(ctx context.Context, repos *repository.Repositories, p *domain.Profile) (bool, error) {
	err := repos.Profiles.Create(ctx, p)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return false, err
	}
	existing, err := repos.Profiles.GetByEmail(ctx, p.Email)
	if err != nil {
		return false, err
	}
	*p = *existing
	return false, nil
}

// weeklyWindows gives a teacher a morning or evening block on a few
// random weekdays.
func weeklyWindows(teacherID int64) []domain.AvailabilityWindow {
	blocks := [][2]string{{"09:00", "12:00"}, {"13:00", "17:00"}, {"18:00", "21:00"}}
	var out []domain.AvailabilityWindow
	for day := 0; day < 7; day++ {
		if rand.IntN(3) == 0 {
			continue
		}
		b := blocks[rand.IntN(len(blocks))]
		out = append(out, domain.AvailabilityWindow{
			TeacherID:   teacherID,
			DayOfWeek:   day,
			StartTime:   b[0],
			EndTime:     b[1],
			IsRecurring: true,
		})
	}
	return out
}
