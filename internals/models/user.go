package models

// User is the only resource exposed by the API.
// Password is stored as supplied unless password hashing is enabled.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Email    string `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	Password string `gorm:"type:varchar(255);not null" json:"password"`
}

func (User) TableName() string {
	return "user"
}
