package model

import "database/sql/driver"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// swagger:model User
type User struct {
	BaseModel
	Email    string `gorm:"size:100;unique;not null" json:"email"`
	Password string `gorm:"size:100;not null" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Roles 以 JSON 数组存储，例如 ["admin","user"]
type Roles []string

func (r Roles) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return marshalJSON(r)
}

func (r *Roles) Scan(value interface{}) error {
	return scanJSON(value, r)
}

func (r Roles) Has(role string) bool {
	for _, v := range r {
		if v == role {
			return true
		}
	}
	return false
}

// swagger:model UserRoles
type UserRoles struct {
	UserID uint  `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	Roles  Roles `gorm:"type:json" json:"roles"`
}

func (UserRoles) TableName() string {
	return "user_roles"
}
