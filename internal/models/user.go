package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleInstructor UserRole = "instructor"
	RoleStudent    UserRole = "student"
)

// Class groups students. Quizzes are visible to a student only through shared classes.
type Class struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:100"`
	Description *string   `json:"description" gorm:"type:text"`
	CreatedBy   string    `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Members []ClassMember `json:"members,omitempty" gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE"`
}

func (Class) TableName() string {
	return "classes"
}

// ClassMember links a user (identified by the identity provider's id) to a class.
type ClassMember struct {
	ClassID   uint      `json:"class_id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"primaryKey;size:255;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (ClassMember) TableName() string {
	return "class_members"
}
