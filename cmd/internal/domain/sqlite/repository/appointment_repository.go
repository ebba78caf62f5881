package repository

import (
	"clinic/cmd/internal/domain/entity"
	"errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

func (a *DefaultAppointmentRepository) FindByID(id int) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.Preload("Patient").Preload("Provider").First(&appt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &appt, err
}

// FindByDay lists the appointments of a date ordered by start time.
// A providerID of zero returns every provider.
func (a *DefaultAppointmentRepository) FindByDay(date string, providerID int) ([]*entity.Appointment, error) {
	q := a.db.Preload("Patient").Preload("Provider").
		Where("appointment_date = ?", date)
	if providerID != 0 {
		q = q.Where("provider_id = ?", providerID)
	}

	var appts []*entity.Appointment
	err := q.Order("start_minute asc, id asc").Find(&appts).Error
	return appts, err
}

// SaveChecked stores the appointment after check has accepted the provider's
// other bookings for that day. The read, the check and the write share one
// transaction, so no booking can slip in between them.
func (a *DefaultAppointmentRepository) SaveChecked(appt *entity.Appointment, check func(sameDay []*entity.Appointment) error) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		var sameDay []*entity.Appointment
		err := tx.Where("provider_id = ?", appt.ProviderID).
			Where("appointment_date = ?", appt.Date).
			Order("start_minute asc, id asc").
			Find(&sameDay).Error
		if err != nil {
			return err
		}

		if err = check(sameDay); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(appt).Error
	})
}

func (a *DefaultAppointmentRepository) UpdateStatus(id int, status string) (bool, error) {
	res := a.db.Model(&entity.Appointment{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (a *DefaultAppointmentRepository) Delete(id int) (bool, error) {
	res := a.db.Delete(&entity.Appointment{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
