package models

// Employee is a stockroom user. Password hashes never leave the persistence
// layer; the JSON shape below is what list/read endpoints serve.
type Employee struct {
	ID          int64   `gorm:"column:employee_id;primaryKey;autoIncrement" json:"employee_id"`
	BadgeNumber string  `gorm:"column:employee_badge_number;not null" json:"employee_badge_number"`
	Name        string  `gorm:"column:employee_name;not null" json:"employee_name"`
	Designation *string `gorm:"column:employee_designation" json:"employee_designation,omitempty"`
	Shift       *string `gorm:"column:employee_shift" json:"employee_shift,omitempty"`
	AccessLevel *string `gorm:"column:employee_access_level" json:"employee_access_level,omitempty"`
	Username    string  `gorm:"column:employee_username;not null" json:"employee_username"`
	Password    string  `gorm:"column:employee_password;not null" json:"-"`
	Email       *string `gorm:"column:employee_email" json:"employee_email,omitempty"`
}

func (Employee) TableName() string {
	return "employees"
}
