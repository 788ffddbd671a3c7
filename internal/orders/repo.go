package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"github.com/saifulmridha/boighor-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence operations for order aggregates.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) OrdersRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts the order together with its line items, shipping address and
// payment stub in one statement batch.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Save persists the order's current field values.
func (r *Repository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error
}

// FindByID loads an order with all sub-records.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Products.Book").
		Preload("ShippingAddress").
		Preload("Payments").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate loads the bare order row under a row lock.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUser loads an order restricted to its owner.
func (r *Repository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Products.Book").
		Preload("ShippingAddress").
		Preload("Payments").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// InvoiceExists reports whether any order already carries the invoice id.
func (r *Repository) InvoiceExists(ctx context.Context, invoiceID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("invoice_id = ?", invoiceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetInvoiceID writes the generated invoice id. The unique index is the last
// line of defense against a concurrent collision.
func (r *Repository) SetInvoiceID(ctx context.Context, orderID uuid.UUID, invoiceID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("invoice_id", invoiceID).Error
}

// CountForDay returns how many orders were created on the given calendar day.
func (r *Repository) CountForDay(ctx context.Context, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CreatePayment appends a payment attempt record.
func (r *Repository) CreatePayment(ctx context.Context, payment *models.OrderPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// ListByUser returns the user's orders newest first with cursor pagination.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Preload("Products").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(pagination.PeekLimit(params.Limit))

	cursor, err := pagination.DecodeCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		}.Encode()
	}
	return rows, nextCursor, nil
}

// ListPendingFirst returns the staff order queue, pending orders ahead of the
// rest, newest first within each group.
func (r *Repository) ListPendingFirst(ctx context.Context, limit int) ([]models.Order, error) {
	limit = pagination.NormalizeLimit(limit)

	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("ShippingAddress").
		Order("CASE WHEN status = 'pending' THEN 0 ELSE 1 END, created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
