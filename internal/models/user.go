package models

// Rôles observés sur la plateforme
const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

type User struct {
	ID         string `json:"user_id"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email"`
	Password   string `json:"-"`
	Role       string `json:"role,omitempty"`
	Photo      string `json:"photo,omitempty"`
	Provider   string `json:"provider,omitempty"`
	ProviderID string `json:"-"`
	Active     bool   `json:"-"`
}
