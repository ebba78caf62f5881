package entity

type Patient struct {
	ID                         int     `gorm:"primaryKey"`
	LastName                   string  `gorm:"column:lastname;size:100;index"`
	FirstName                  string  `gorm:"column:firstname;size:100"`
	PreferredName              *string `gorm:"column:preferredname;size:100"`
	Address                    *string `gorm:"column:address"`
	City                       *string `gorm:"column:city;size:100"`
	PostalCode                 *string `gorm:"column:postalcode;size:20"`
	Province                   *string `gorm:"column:province;size:100"`
	HomePhone                  *string `gorm:"column:homephone;size:20"`
	WorkPhone                  *string `gorm:"column:workphone;size:20"`
	CellPhone                  *string `gorm:"column:cellphone;size:20"`
	Email                      *string `gorm:"column:email;size:150"`
	DOB                        *string `gorm:"column:dob;size:10"` // YYYY-MM-DD
	Sex                        *string `gorm:"column:sex;size:10"`
	HealthInsuranceNumber      *string `gorm:"column:healthinsurance_number;size:50"`
	HealthInsuranceVersionCode *string `gorm:"column:healthinsurance_version_code;size:10"`
	Status                     string  `gorm:"column:patient_status;size:16;not null;default:active"` // active | not enrolled
	FamilyPhysician            *string `gorm:"column:family_physician;size:150"`
}
