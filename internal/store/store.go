package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"request-approval-backend/internal/model"
)

// ErrNotFound marks the expected "no such record" outcome, as opposed
// to a genuine storage fault.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for all database operations.
type Store interface {
	CreateRequest(ctx context.Context, req *model.Request) error
	GetRequest(ctx context.Context, id int64) (*model.Request, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]model.Request, error)
	UpdateRequest(ctx context.Context, id int64, patch RequestPatch) (*model.Request, error)
	DeleteRequest(ctx context.Context, id int64) error

	UpsertAdminToken(ctx context.Context, token, label string) (*model.AdminToken, bool, error)
	ListAdminTokens(ctx context.Context) ([]model.AdminToken, error)
	DeleteAdminToken(ctx context.Context, id string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) CreateRequest(ctx context.Context, req *model.Request) error {
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (s *gormStore) GetRequest(ctx context.Context, id int64) (*model.Request, error) {
	var req model.Request
	if err := s.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch request %d: %w", id, err)
	}
	return &req, nil
}

func (s *gormStore) ListRequests(ctx context.Context, filter RequestFilter) ([]model.Request, error) {
	q := s.db.WithContext(ctx).Model(&model.Request{})
	if filter.ID != nil {
		q = q.Where("id = ?", *filter.ID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.IsApproved != nil {
		q = q.Where("is_approved = ?", *filter.IsApproved)
	}
	if filter.CreatedAtGte != nil {
		q = q.Where("created_at >= ?", *filter.CreatedAtGte)
	}
	if filter.CreatedAtLte != nil {
		q = q.Where("created_at <= ?", *filter.CreatedAtLte)
	}

	var requests []model.Request
	if err := q.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

func (s *gormStore) UpdateRequest(ctx context.Context, id int64, patch RequestPatch) (*model.Request, error) {
	updates := map[string]any{}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.IsApproved != nil {
		updates["is_approved"] = *patch.IsApproved
	} else if patch.ClearApproval {
		updates["is_approved"] = gorm.Expr("NULL")
	}
	if patch.Reason != nil {
		updates["reason"] = *patch.Reason
	}
	if len(updates) == 0 {
		return s.GetRequest(ctx, id)
	}

	var req model.Request
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Request{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&req, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update request %d: %w", id, err)
	}
	return &req, nil
}

func (s *gormStore) DeleteRequest(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Request{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete request %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertAdminToken registers an admin device token. A token seen before
// keeps its row: the label is updated (a new label wins, otherwise the
// stored one is kept) and the validation timestamp refreshed. The unique
// index on the token column guards against concurrent first inserts.
func (s *gormStore) UpsertAdminToken(ctx context.Context, token, label string) (*model.AdminToken, bool, error) {
	var (
		record  model.AdminToken
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("token = ?", token).First(&record).Error
		switch {
		case err == nil:
			updates := map[string]any{"last_validated_at": time.Now()}
			if label != "" {
				updates["label"] = label
			}
			if err := tx.Model(&record).Updates(updates).Error; err != nil {
				return err
			}
			return tx.Where("token = ?", token).First(&record).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := time.Now()
			record = model.AdminToken{
				ID:              uuid.NewString(),
				Token:           token,
				Label:           label,
				CreatedAt:       now,
				LastValidatedAt: now,
			}
			created = true
			return tx.Create(&record).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert admin token: %w", err)
	}
	return &record, created, nil
}

func (s *gormStore) ListAdminTokens(ctx context.Context) ([]model.AdminToken, error) {
	var tokens []model.AdminToken
	if err := s.db.WithContext(ctx).Find(&tokens).Error; err != nil {
		return nil, fmt.Errorf("failed to list admin tokens: %w", err)
	}
	return tokens, nil
}

// DeleteAdminToken removes a token row by id. Deleting a row that is
// already gone is not an error; concurrent prunes of the same token
// must both succeed.
func (s *gormStore) DeleteAdminToken(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&model.AdminToken{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete admin token %s: %w", id, err)
	}
	return nil
}
