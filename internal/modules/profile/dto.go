package profile

import "time"

type UpdateProfileRequest struct {
	FullName       *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	Phone          *string `json:"phone" validate:"omitempty,max=32"`
	Country        *string `json:"country" validate:"omitempty,max=64"`
	NativeLanguage *string `json:"native_language" validate:"omitempty,max=32"`
}

func (r UpdateProfileRequest) fields() map[string]any {
	out := map[string]any{}
	if r.FullName != nil {
		out["full_name"] = *r.FullName
	}
	if r.Phone != nil {
		out["phone"] = *r.Phone
	}
	if r.Country != nil {
		out["country"] = *r.Country
	}
	if r.NativeLanguage != nil {
		out["native_language"] = *r.NativeLanguage
	}
	return out
}

type CreateGoalRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"max=4000"`
	TargetDate  *time.Time `json:"target_date"`
}

type UpdateGoalRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=4000"`
	TargetDate  *time.Time `json:"target_date"`
	IsCompleted *bool      `json:"is_completed"`
}
