package entities

import "time"

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialized
	Books    []Book `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Book timestamps are owned by the library service, so gorm's automatic
// tracking is switched off for both columns.
type Book struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	ISBN        string    `gorm:"column:isbn;type:text;not null" json:"isbn"`
	Description string    `gorm:"type:text;not null" json:"description"`
	PageCount   int       `gorm:"column:page_count;not null" json:"pageCount"`
	Author      string    `gorm:"type:text;not null" json:"author"`
	UserID      uint      `gorm:"column:user_id;index;not null" json:"ownerId"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// RevokedToken is a bearer token that was logged out before it expired.
// ID holds the token's jti claim.
type RevokedToken struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`
}
