package controller

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"k9medics_backend/internals/features/donations/donations/model"
	"k9medics_backend/internals/features/donations/donations/service"
)

// memRepo is an in-memory service.Repository.
type memRepo struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*model.Donation
	createErr error
	failed    map[uuid.UUID]string
}

func newMemRepo() *memRepo {
	return &memRepo{
		byID:   map[uuid.UUID]*model.Donation{},
		failed: map[uuid.UUID]string{},
	}
}

func (r *memRepo) Create(_ context.Context, d *model.Donation) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.byID[d.DonationID] = &cp
	return nil
}

func (r *memRepo) AttachSession(_ context.Context, id uuid.UUID, sessionID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return service.ErrDonationNotFound
	}
	d.DonationSessionID = &sessionID
	d.DonationPaymentToken = &token
	return nil
}

func (r *memRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.byID[id]; ok {
		d.DonationStatus = model.DonationStatusFailed
		r.failed[id] = reason
	}
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return nil, service.ErrDonationNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memRepo) FindBySessionID(_ context.Context, sessionID string) (*model.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.byID {
		if d.SessionID() == sessionID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, service.ErrDonationNotFound
}

func (r *memRepo) ApplyStatus(_ context.Context, sessionID string, upd service.StatusUpdate) (*model.Donation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.byID {
		if d.SessionID() != sessionID {
			continue
		}
		if d.DonationStatus == model.DonationStatusPaid || d.DonationStatus == upd.Status {
			cp := *d
			return &cp, false, nil
		}
		d.DonationStatus = upd.Status
		cp := *d
		return &cp, true, nil
	}
	return nil, false, service.ErrDonationNotFound
}

func (r *memRepo) List(_ context.Context, f service.ListFilter) ([]model.Donation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Donation
	for _, d := range r.byID {
		if f.Status == "" || d.DonationStatus == f.Status {
			out = append(out, *d)
		}
	}
	total := int64(len(out))
	if f.Offset >= len(out) {
		return nil, total, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r *memRepo) Summary(context.Context) ([]service.CurrencyTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := map[string]*service.CurrencyTotal{}
	var out []service.CurrencyTotal
	for _, d := range r.byID {
		if d.DonationStatus != model.DonationStatusPaid {
			continue
		}
		t, ok := totals[d.DonationCurrency]
		if !ok {
			t = &service.CurrencyTotal{Currency: d.DonationCurrency}
			totals[d.DonationCurrency] = t
		}
		t.Count++
		t.Total += d.DonationAmount
	}
	for _, t := range totals {
		out = append(out, *t)
	}
	return out, nil
}

func (r *memRepo) ExpirePending(context.Context, time.Time) (int64, error) { return 0, nil }

func (r *memRepo) only() *model.Donation {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.byID {
		cp := *d
		return &cp
	}
	return nil
}

type fakeProvider struct {
	CreateSessionFunc func(ctx context.Context, d *model.Donation) (*service.ProviderSession, error)
	LookupSessionFunc func(ctx context.Context, id string) (*service.SessionStatus, error)
}

func (f *fakeProvider) Name() string { return model.GatewayStripe }

func (f *fakeProvider) CreateSession(ctx context.Context, d *model.Donation) (*service.ProviderSession, error) {
	return f.CreateSessionFunc(ctx, d)
}

func (f *fakeProvider) LookupSession(ctx context.Context, id string) (*service.SessionStatus, error) {
	return f.LookupSessionFunc(ctx, id)
}
