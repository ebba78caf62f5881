package repository

import (
	"clinic/cmd/internal/domain/entity"
	"errors"
	"gorm.io/gorm"
	"strings"
)

const searchLimit = 50

type DefaultPatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *DefaultPatientRepository {
	return &DefaultPatientRepository{db: db}
}

func (p *DefaultPatientRepository) FindByID(id int) (*entity.Patient, error) {
	var patient entity.Patient
	err := p.db.First(&patient, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &patient, err
}

// SearchByName matches a last name prefix, or an exact last name plus a first
// name prefix when firstPrefix is set. Case-insensitive.
func (p *DefaultPatientRepository) SearchByName(last, firstPrefix string) ([]*entity.Patient, error) {
	q := p.db.Model(&entity.Patient{})
	if firstPrefix != "" {
		q = q.Where("LOWER(lastname) = LOWER(?)", last).
			Where("LOWER(firstname) LIKE LOWER(?)", firstPrefix+"%")
	} else {
		q = q.Where("LOWER(lastname) LIKE LOWER(?)", last+"%")
	}

	var patients []*entity.Patient
	err := q.Order("lastname, firstname").Limit(searchLimit).Find(&patients).Error
	return patients, err
}

// SearchContains matches keyword anywhere in any of the given columns.
func (p *DefaultPatientRepository) SearchContains(columns []string, keyword string) ([]*entity.Patient, error) {
	if len(columns) == 0 {
		return nil, errors.New("no search columns given")
	}

	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		conds[i] = col + " LIKE ?"
		args[i] = "%" + keyword + "%"
	}

	var patients []*entity.Patient
	err := p.db.Model(&entity.Patient{}).
		Where(strings.Join(conds, " OR "), args...).
		Order("lastname, firstname").
		Limit(searchLimit).
		Find(&patients).Error
	return patients, err
}

func (p *DefaultPatientRepository) Save(patient *entity.Patient) error {
	return p.db.Save(patient).Error
}

// Update applies only the given columns. The boolean is false when no patient has that id.
func (p *DefaultPatientRepository) Update(id int, fields map[string]any) (bool, error) {
	res := p.db.Model(&entity.Patient{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
