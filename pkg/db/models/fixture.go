package models

// Fixture is a piece of test equipment that consumes inventory.
type Fixture struct {
	ID           int64  `gorm:"column:fixture_id;primaryKey;autoIncrement" json:"fixture_id"`
	FixtureName  string `gorm:"column:fixture_name;not null" json:"fixture_name"`
	TestArea     string `gorm:"column:test_area;not null" json:"test_area"`
	ProjectName  string `gorm:"column:project_name;not null" json:"project_name"`
	AssetTag     string `gorm:"column:asset_tag;not null" json:"asset_tag"`
	SerialNumber string `gorm:"column:fixture_serial_number;not null" json:"fixture_serial_number"`
}

func (Fixture) TableName() string {
	return "fixtures"
}
