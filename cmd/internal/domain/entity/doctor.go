package entity

type Doctor struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"size:150;uniqueIndex;not null"`
}
