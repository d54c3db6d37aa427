package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type NotificationSettings struct {
	Email     bool `json:"email" firestore:"email"`
	Push      bool `json:"push" firestore:"push"`
	Reminders bool `json:"reminders" firestore:"reminders"`
}

type Preferences struct {
	Theme                string               `json:"theme" firestore:"theme"`
	Language             string               `json:"language" firestore:"language"`
	NotificationSettings NotificationSettings `json:"notificationSettings" firestore:"notificationSettings"`
	FirstDayOfWeek       int                  `json:"firstDayOfWeek" firestore:"firstDayOfWeek"` // 0 = Sunday
}

// DefaultPreferences are assigned to every profile at signup.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:    "light",
		Language: "en",
		NotificationSettings: NotificationSettings{
			Email:     true,
			Push:      true,
			Reminders: true,
		},
		FirstDayOfWeek: 0,
	}
}

// UserProfile is keyed by the owner ID issued by the identity provider.
type UserProfile struct {
	ID             string      `json:"id" gorm:"primaryKey" firestore:"-"`
	Email          string      `json:"email" gorm:"uniqueIndex;not null" firestore:"email"`
	PasswordHash   string      `json:"-" firestore:"passwordHash,omitempty"`
	AuthProvider   string      `json:"authProvider" gorm:"default:email" firestore:"authProvider"`
	Username       string      `json:"username" firestore:"username"`
	FullName       string      `json:"fullName" firestore:"fullName"`
	Age            *int        `json:"age" firestore:"age"`
	Gender         string      `json:"gender" firestore:"gender"`
	MaritalStatus  string      `json:"maritalStatus" firestore:"maritalStatus"`
	EducationLevel string      `json:"educationLevel" firestore:"educationLevel"`
	Country        string      `json:"country" firestore:"country"`
	Timezone       string      `json:"timezone" firestore:"timezone"`
	Role           Role        `json:"role" gorm:"default:user" firestore:"role"`
	Preferences    Preferences `json:"preferences" gorm:"serializer:json" firestore:"preferences"`
	DeviceToken    string      `json:"-" gorm:"column:fcm_token" firestore:"fcmToken,omitempty"`
	CreatedAt      time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt" firestore:"updatedAt"`
}

func (UserProfile) TableName() string {
	return "profiles"
}

func (u *UserProfile) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Auth DTOs
type RegisterRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	Username       string `json:"username"`
	FullName       string `json:"fullName"`
	Age            *int   `json:"age"`
	Gender         string `json:"gender"`
	MaritalStatus  string `json:"maritalStatus"`
	EducationLevel string `json:"educationLevel"`
	Country        string `json:"country"`
	Timezone       string `json:"timezone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Username       *string      `json:"username"`
	FullName       *string      `json:"fullName"`
	Age            *int         `json:"age"`
	Gender         *string      `json:"gender"`
	MaritalStatus  *string      `json:"maritalStatus"`
	EducationLevel *string      `json:"educationLevel"`
	Country        *string      `json:"country"`
	Timezone       *string      `json:"timezone"`
	Preferences    *Preferences `json:"preferences"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// UserOverview is one row of the admin user listing.
type UserOverview struct {
	UserProfile
	GoalsCount  int `json:"goalsCount"`
	TasksCount  int `json:"tasksCount"`
	EventsCount int `json:"eventsCount"`
}
