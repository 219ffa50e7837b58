package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

var AllRoles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// User is the acting identity. Role is the only authorization axis.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	FirstName string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName  string    `gorm:"not null;column:last_name" json:"last_name"`
	Role      Role      `gorm:"column:role;not null;index" json:"role"`
	Aura      int       `gorm:"column:aura;not null" json:"aura"`
	IsActive  bool      `gorm:"column:is_active;not null" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return nil
}

func (u *User) IsAdmin() bool   { return u != nil && u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u != nil && u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u != nil && u.Role == RoleStudent }
