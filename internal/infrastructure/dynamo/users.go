package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/shopshap/internal/domain"
	"github.com/shopshap/internal/pkg/id"
)

// UserRepo stores users keyed by normalized phone number.
type UserRepo struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName, now: time.Now}
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldPhone, phone),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user %s: %w", phone, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *UserRepo) Update(ctx context.Context, phone string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = r.now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldPhone, phone),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// UpsertVerified creates the user row on first verification, otherwise marks
// the existing row as confirmed.
func (r *UserRepo) UpsertVerified(ctx context.Context, v *domain.VerifiedUser) error {
	_, err := r.GetByPhone(ctx, v.Phone)
	switch {
	case err == nil:
		return r.Update(ctx, v.Phone, map[string]interface{}{
			fieldCountryCode:    v.CountryCode,
			fieldPhoneConfirmed: true,
			fieldVerifiedAt:     v.VerifiedAt.UTC(),
		})
	case errors.Is(err, domain.ErrNotFound):
		now := r.now().UTC()
		return r.Put(ctx, &domain.User{
			UserID:         id.New(),
			Phone:          v.Phone,
			CountryCode:    v.CountryCode,
			PhoneConfirmed: true,
			VerifiedAt:     v.VerifiedAt.UTC(),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	default:
		return fmt.Errorf("lookup user: %w", err)
	}
}
