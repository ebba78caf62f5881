package repository

import (
	"clinic/cmd/internal/domain/entity"
	"errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultDoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) *DefaultDoctorRepository {
	return &DefaultDoctorRepository{db: db}
}

func (d *DefaultDoctorRepository) FindAll() ([]*entity.Doctor, error) {
	var doctors []*entity.Doctor
	err := d.db.Order("id asc").Find(&doctors).Error
	return doctors, err
}

func (d *DefaultDoctorRepository) FindByID(id int) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := d.db.First(&doctor, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &doctor, err
}

// EnsureNames inserts any roster name that is not stored yet. Existing rows
// keep their ids so appointments stay attached to the same column.
func (d *DefaultDoctorRepository) EnsureNames(names []string) error {
	if len(names) == 0 {
		return nil
	}

	rows := make([]*entity.Doctor, len(names))
	for i, name := range names {
		rows[i] = &entity.Doctor{Name: name}
	}
	return d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
