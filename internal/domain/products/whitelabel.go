package products

import "time"

const (
	DefaultPrimaryColor   = "#3b82f6"
	DefaultSecondaryColor = "#1e40af"
)

type WhitelabelConfig struct {
	ID        string   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID string   `gorm:"type:uuid;not null;uniqueIndex:idx_whitelabel_product_id" json:"product_id"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	CustomDomain   *string `gorm:"uniqueIndex:idx_whitelabel_custom_domain" json:"custom_domain"`
	PrimaryColor   string  `gorm:"type:varchar(16);not null;default:'#3b82f6'" json:"primary_color"`
	SecondaryColor string  `gorm:"type:varchar(16);not null;default:'#1e40af'" json:"secondary_color"`
	LogoURL        *string `json:"logo_url"`
	CompanyName    string  `gorm:"size:255;not null" json:"company_name"`
	SupportEmail   *string `json:"support_email"`
	CustomCSS      *string `gorm:"column:custom_css" json:"custom_css"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultWhitelabel is the branding shown on the portal when the creator has
// not configured any.
func DefaultWhitelabel(p Product) WhitelabelConfig {
	return WhitelabelConfig{
		ProductID:      p.ID,
		PrimaryColor:   DefaultPrimaryColor,
		SecondaryColor: DefaultSecondaryColor,
		CompanyName:    p.Name,
	}
}
