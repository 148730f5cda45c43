package products

import (
	"time"

	"saas-template/internal/domain/creators"
)

type Product struct {
	ID        string            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatorID string            `gorm:"type:uuid;not null;index" json:"creator_id"`
	Creator   *creators.Creator `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	Description *string `json:"description"`
	ProductURL  string  `gorm:"not null" json:"product_url"`
	WebhookURL  *string `json:"webhook_url"`

	// bcrypt hash; the plaintext key is only returned on create/rotate
	APIKeyHash *string `gorm:"column:api_key_hash" json:"-"`
	APIKeyHint *string `gorm:"column:api_key_hint" json:"api_key_hint"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
