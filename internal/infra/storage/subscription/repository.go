package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/psqlbuilder"
)

var subscriptionColumns = []string{
	"id",
	"provider_id",
	"status",
	"service_limit",
	"payment_sent_at",
	"activated_at",
	"activated_by",
	"created_at",
	"updated_at",
}

// Repository репозиторий подписок провайдеров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория подписок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByProviderID получает подписку провайдера.
// Внутри транзакции строка блокируется (FOR UPDATE), чтобы пересчет лимита услуг
// и вставка новой услуги выполнялись без гонок
func (r *Repository) GetByProviderID(ctx context.Context, providerID int64) (*domain.Subscription, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(subscriptionColumns...).
		From("business_subscriptions").
		Where(squirrel.Eq{"provider_id": providerID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderID - build select query: %v", ErrBuildQuery, err)
	}

	subscription, err := scanSubscription(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderID - scan subscription: %v", ErrScanRow, err)
	}

	return subscription, nil
}

// GetOrCreate возвращает подписку провайдера, создавая PENDING подписку с лимитом по умолчанию,
// если её еще нет. Параллельные вызовы не создают дубликатов (уникальный provider_id)
func (r *Repository) GetOrCreate(ctx context.Context, providerID int64) (*domain.Subscription, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("business_subscriptions").
		Columns("provider_id", "status", "service_limit").
		Values(providerID, domain.SubscriptionPending, domain.FreeTierServiceLimit).
		Suffix("ON CONFLICT (provider_id) DO NOTHING").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOrCreate - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: GetOrCreate - execute insert: %v", ErrExecQuery, err)
	}

	return r.GetByProviderID(ctx, providerID)
}

// MarkPaymentSent переводит подписку PENDING -> PAYMENT_SENT
func (r *Repository) MarkPaymentSent(ctx context.Context, providerID int64) (*domain.Subscription, error) {
	return r.transition(ctx, "MarkPaymentSent", providerID, domain.SubscriptionPending, map[string]interface{}{
		"status":          domain.SubscriptionPaymentSent,
		"payment_sent_at": squirrel.Expr("NOW()"),
	})
}

// Activate переводит подписку PAYMENT_SENT -> ACTIVE и выставляет лимит услуг
func (r *Repository) Activate(ctx context.Context, providerID, adminID int64, serviceLimit int) (*domain.Subscription, error) {
	return r.transition(ctx, "Activate", providerID, domain.SubscriptionPaymentSent, map[string]interface{}{
		"status":        domain.SubscriptionActive,
		"service_limit": serviceLimit,
		"activated_at":  squirrel.Expr("NOW()"),
		"activated_by":  adminID,
	})
}

// transition обновляет подписку, только если её текущий статус равен from
func (r *Repository) transition(
	ctx context.Context,
	method string,
	providerID int64,
	from domain.SubscriptionStatus,
	values map[string]interface{},
) (*domain.Subscription, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("business_subscriptions").
		SetMap(values).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"provider_id": providerID, "status": from}).
		Suffix("RETURNING " + strings.Join(subscriptionColumns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, method, err)
	}

	subscription, err := scanSubscription(executor.QueryRowContext(ctx, query, args...))
	if err == nil {
		return subscription, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	if _, getErr := r.GetByProviderID(ctx, providerID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStateChanged
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var subscription domain.Subscription
	var paymentSentAt, activatedAt, createdAt, updatedAt sql.NullTime
	var activatedBy sql.NullInt64

	err := row.Scan(
		&subscription.ID,
		&subscription.ProviderID,
		&subscription.Status,
		&subscription.ServiceLimit,
		&paymentSentAt,
		&activatedAt,
		&activatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if paymentSentAt.Valid {
		subscription.PaymentSentAt = &paymentSentAt.Time
	}
	if activatedAt.Valid {
		subscription.ActivatedAt = &activatedAt.Time
	}
	if activatedBy.Valid {
		subscription.ActivatedBy = &activatedBy.Int64
	}
	subscription.CreatedAt = createdAt.Time
	subscription.UpdatedAt = updatedAt.Time

	return &subscription, nil
}
