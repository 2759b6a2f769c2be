package domain

import "time"

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Profile is the account row every user owns, whatever the role.
type Profile struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash   string    `json:"-" gorm:"not null"`
	Role           UserRole  `json:"role" gorm:"type:varchar(16);not null;index"`
	FullName       string    `json:"full_name" gorm:"type:varchar(255)"`
	Phone          string    `json:"phone,omitempty" gorm:"type:varchar(32)"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	Country        string    `json:"country,omitempty" gorm:"type:varchar(64)"`
	NativeLanguage string    `json:"native_language,omitempty" gorm:"type:varchar(32)"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// LearningGoal is a student's self-tracked objective.
type LearningGoal struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	StudentID   int64      `json:"student_id" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"type:varchar(255);not null"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	IsCompleted bool       `json:"is_completed" gorm:"not null;default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (LearningGoal) TableName() string { return "learning_goals" }
