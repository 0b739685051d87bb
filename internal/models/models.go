package models

import "time"

type User struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:varchar(80);uniqueIndex;not null" json:"username"`
	CreatedAt time.Time `json:"created_at"`

	Companions    []Companion    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Conversations []Conversation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string { return "users" }

// Companion is a persona owned by a user. All descriptive fields are
// free-form; empty values fall back to persona defaults at chat time.
type Companion struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint64 `gorm:"not null;index;uniqueIndex:uniq_companion_user_name,priority:1" json:"user_id"`

	Name         string  `gorm:"type:varchar(120);not null;uniqueIndex:uniq_companion_user_name,priority:2" json:"name"`
	Age          *int    `json:"age"`
	Gender       *string `gorm:"type:varchar(50)" json:"gender"`
	BirthCountry *string `gorm:"type:varchar(80)" json:"birth_country"`
	Personality  *string `gorm:"type:text" json:"personality"`
	Education    *string `gorm:"type:varchar(120)" json:"education"`
	Background   *string `gorm:"type:text" json:"background"`

	// Overrides the rendered persona template when set.
	SystemPrompt *string `gorm:"type:text" json:"system_prompt"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Conversations []Conversation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Companion) TableName() string { return "companions" }

type Conversation struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint64 `gorm:"not null;index" json:"user_id"`
	CompanionID uint64 `gorm:"not null;index" json:"companion_id"`

	// External identifier for the persisted chat history of this conversation.
	SessionKey string `gorm:"type:varchar(200);uniqueIndex;not null" json:"session_key"`

	CreatedAt time.Time `json:"created_at"`
}

func (Conversation) TableName() string { return "conversations" }
