package models

import "time"

type User struct {
	ID           string     `gorm:"type:uuid;primaryKey"`
	FirstName    string     `gorm:"size:100;not null"`
	LastName     string     `gorm:"size:100;not null"`
	Email        string     `gorm:"size:320;not null;uniqueIndex"`
	PhoneNumber  string     `gorm:"size:32;not null"`
	Role         string     `gorm:"size:20;not null;index"`
	Status       string     `gorm:"size:20;not null;index"`
	StatusReason string     `gorm:"type:text;not null"`
	Flags        []UserFlag `gorm:"foreignKey:UserID"`
	DeletedAt    *time.Time `gorm:"index"`
	CreatedAt    time.Time  `gorm:"index"`
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

// UserFlag rows are only ever inserted.
type UserFlag struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	UserID    string `gorm:"type:uuid;index;not null"`
	Type      string `gorm:"size:32;not null"`
	Severity  string `gorm:"size:16;not null"`
	Reason    string `gorm:"type:text;not null"`
	CreatedBy string `gorm:"type:uuid;not null"`
	CreatedAt time.Time
}

func (UserFlag) TableName() string {
	return "user_flags"
}
