package repository

import (
	"context"
	"errors"

	"github.com/Behyna/payment-services/esewagateway/internal/model"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPaymentExists   = errors.New("PAYMENT_EXISTED")
	ErrPaymentNotFound = errors.New("PAYMENT_NOT_FOUND")
)

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	FindByTransactionUUID(ctx context.Context, transactionUUID string) (*model.Payment, error)
	// FindForUpdate takes a row lock on the payment; callers must be inside
	// a TxManager transaction so concurrent reconciliations for the same
	// transaction serialize.
	FindForUpdate(ctx context.Context, transactionUUID string) (*model.Payment, error)
	Update(ctx context.Context, p *model.Payment) error
}

type payment struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &payment{db: db}
}

func (r *payment) Create(ctx context.Context, p *model.Payment) error {
	db := GetTx(ctx, r.db)

	err := db.Create(p).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrPaymentExists
	}

	return err
}

func (r *payment) FindByTransactionUUID(ctx context.Context, transactionUUID string) (*model.Payment, error) {
	var p model.Payment

	err := GetTx(ctx, r.db).Where("transaction_uuid = ?", transactionUUID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}

		return nil, err
	}

	return &p, nil
}

func (r *payment) FindForUpdate(ctx context.Context, transactionUUID string) (*model.Payment, error) {
	var p model.Payment

	err := GetTx(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transaction_uuid = ?", transactionUUID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}

		return nil, err
	}

	return &p, nil
}

func (r *payment) Update(ctx context.Context, p *model.Payment) error {
	return GetTx(ctx, r.db).Save(p).Error
}
