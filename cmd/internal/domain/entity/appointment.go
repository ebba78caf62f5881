package entity

type Appointment struct {
	ID         int `gorm:"primaryKey"`
	PatientID  int `gorm:"not null;index"`                             // References: patients(id)
	ProviderID int `gorm:"not null;index:idx_provider_day,priority:1"` // References: doctors(id)

	// Date is YYYY-MM-DD, StartMinute counts minutes since midnight.
	Date        string `gorm:"column:appointment_date;size:10;not null;index:idx_provider_day,priority:2"`
	StartMinute int    `gorm:"not null"`
	Duration    int    `gorm:"column:duration_minutes;not null"`
	Reason      *string
	Status      string `gorm:"size:16;not null;default:booked"`
	CreatedByID int    `gorm:"not null"` // References: users(id)
	CreatedAt   int64  `gorm:"not null;autoCreateTime:milli"`
	UpdatedAt   int64  `gorm:"not null;autoUpdateTime:milli"`

	// Relations
	Patient  Patient `gorm:"foreignKey:PatientID;references:ID"`
	Provider Doctor  `gorm:"foreignKey:ProviderID;references:ID"`
}
