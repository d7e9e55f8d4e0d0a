package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"k9medics_backend/internals/features/donations/donations/model"
)

var ErrDonationNotFound = errors.New("donation not found")

type StatusUpdate struct {
	Status        string
	PaymentMethod string
	PaidAt        *time.Time
	Metadata      map[string]interface{}
}

type ListFilter struct {
	Status string
	Offset int
	Limit  int
}

type CurrencyTotal struct {
	Currency string `json:"currency"`
	Count    int64  `json:"count"`
	Total    int64  `json:"total"`
}

type Repository interface {
	Create(ctx context.Context, d *model.Donation) error
	AttachSession(ctx context.Context, id uuid.UUID, sessionID, token string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Donation, error)
	FindBySessionID(ctx context.Context, sessionID string) (*model.Donation, error)
	// ApplyStatus reports whether anything was written. Paid donations never change again.
	ApplyStatus(ctx context.Context, sessionID string, upd StatusUpdate) (*model.Donation, bool, error)
	List(ctx context.Context, f ListFilter) ([]model.Donation, int64, error)
	Summary(ctx context.Context) ([]CurrencyTotal, error)
	ExpirePending(ctx context.Context, before time.Time) (int64, error)
}

type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

func (r *GormRepository) Create(ctx context.Context, d *model.Donation) error {
	return r.DB.WithContext(ctx).Create(d).Error
}

func (r *GormRepository) AttachSession(ctx context.Context, id uuid.UUID, sessionID, token string) error {
	return r.DB.WithContext(ctx).
		Model(&model.Donation{}).
		Where("donation_id = ?", id).
		Updates(map[string]interface{}{
			"donation_session_id":    sessionID,
			"donation_payment_token": token,
		}).Error
}

func (r *GormRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.DB.WithContext(ctx).
		Model(&model.Donation{}).
		Where("donation_id = ? AND donation_status = ?", id, model.DonationStatusPending).
		Updates(map[string]interface{}{
			"donation_status":   model.DonationStatusFailed,
			"donation_metadata": datatypes.JSONMap{"failure": reason},
		}).Error
}

func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Donation, error) {
	var d model.Donation
	if err := r.DB.WithContext(ctx).Where("donation_id = ?", id).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *GormRepository) FindBySessionID(ctx context.Context, sessionID string) (*model.Donation, error) {
	var d model.Donation
	if err := r.DB.WithContext(ctx).Where("donation_session_id = ?", sessionID).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *GormRepository) ApplyStatus(ctx context.Context, sessionID string, upd StatusUpdate) (*model.Donation, bool, error) {
	var (
		donation model.Donation
		changed  bool
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("donation_session_id = ?", sessionID).
			First(&donation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDonationNotFound
			}
			return fmt.Errorf("load donation %s: %w", sessionID, err)
		}

		updates := statusUpdates(&donation, upd)
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&donation).Updates(updates).Error; err != nil {
			return fmt.Errorf("update donation %s: %w", sessionID, err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &donation, changed, nil
}

// statusUpdates computes the column changes for upd and applies them to d.
func statusUpdates(d *model.Donation, upd StatusUpdate) map[string]interface{} {
	updates := map[string]interface{}{}
	if d.DonationStatus == model.DonationStatusPaid || upd.Status == "" {
		return updates
	}
	if d.DonationStatus != upd.Status {
		updates["donation_status"] = upd.Status
		d.DonationStatus = upd.Status
	}
	if upd.PaymentMethod != "" && (d.DonationPaymentMethod == nil || *d.DonationPaymentMethod != upd.PaymentMethod) {
		m := upd.PaymentMethod
		updates["donation_payment_method"] = m
		d.DonationPaymentMethod = &m
	}
	if upd.Status == model.DonationStatusPaid && upd.PaidAt != nil && d.DonationPaidAt == nil {
		updates["donation_paid_at"] = *upd.PaidAt
		d.DonationPaidAt = upd.PaidAt
	}
	if len(updates) > 0 && len(upd.Metadata) > 0 {
		updates["donation_metadata"] = datatypes.JSONMap(upd.Metadata)
		d.DonationMetadata = upd.Metadata
	}
	return updates
}

func (r *GormRepository) List(ctx context.Context, f ListFilter) ([]model.Donation, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Donation{})
	if f.Status != "" {
		q = q.Where("donation_status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Donation
	if err := q.Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *GormRepository) Summary(ctx context.Context) ([]CurrencyTotal, error) {
	var out []CurrencyTotal
	err := r.DB.WithContext(ctx).
		Model(&model.Donation{}).
		Select("donation_currency AS currency, COUNT(*) AS count, COALESCE(SUM(donation_amount), 0) AS total").
		Where("donation_status = ?", model.DonationStatusPaid).
		Group("donation_currency").
		Scan(&out).Error
	return out, err
}

func (r *GormRepository) ExpirePending(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&model.Donation{}).
		Where("donation_status = ? AND created_at < ?", model.DonationStatusPending, before).
		Update("donation_status", model.DonationStatusExpired)
	return res.RowsAffected, res.Error
}
