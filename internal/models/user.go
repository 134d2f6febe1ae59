package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:varchar(36);primaryKey"`
	Username  string    `json:"username" gorm:"size:20;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"size:120;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:60;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
	Notes     []Note    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns the id so every driver gets the same UUID scheme.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
