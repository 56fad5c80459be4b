package models

import "time"

// Table names follow the production schema, which mixes PascalCase tables
// (managed by the hosted platform) with snake_case ones added later.

type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(128);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"type:varchar(32)" json:"phone"`
	PasswordHash string    `gorm:"type:varchar(128);not null" json:"-"`
	IsProvider   bool      `gorm:"not null;default:false" json:"isProvider"`
	Verified     bool      `gorm:"not null;default:false" json:"verified"`
	AvatarURL    *string   `gorm:"type:varchar(512)" json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string { return "User" }

type Service struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	Price        float64   `gorm:"not null" json:"price"`
	Category     string    `gorm:"type:varchar(64);index;not null" json:"category"`
	Availability bool      `gorm:"not null;default:true" json:"availability"`
	UserID       string    `gorm:"type:varchar(36);index;not null" json:"userId"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Service) TableName() string { return "Service" }

type Review struct {
	ID        string    `gorm:"type:varchar(26);primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Rating    int       `gorm:"not null" json:"rating"`
	ServiceID string    `gorm:"type:varchar(36);index;not null" json:"serviceId"`
	UserID    string    `gorm:"type:varchar(36);index;not null" json:"userId"`
	PhotoURL  *string   `gorm:"type:varchar(512)" json:"photoUrl"`
	CreatedAt time.Time `json:"created_at"`
}

func (Review) TableName() string { return "Review" }

type ChatMessage struct {
	ID         string    `gorm:"type:varchar(26);primaryKey" json:"id"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	SenderID   string    `gorm:"column:senderId;type:varchar(36);index;not null" json:"senderId"`
	ReceiverID string    `gorm:"column:receiverId;type:varchar(36);index;not null" json:"receiverId"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string { return "Chat" }

type Notification struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:varchar(36);index;not null" json:"userId"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string { return "Notification" }

type ForumTopic struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (ForumTopic) TableName() string { return "forum_topics" }

type ForumPost struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TopicID   uint64    `gorm:"column:topic_id;index;not null" json:"topic_id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);index;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (ForumPost) TableName() string { return "forum_posts" }
