package remote

import (
	"artbook/src/models"
	"artbook/src/models/scopes"
	"context"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Users mirrors identity-provider users into the users table so queue
// consumers can resolve an email address from a user id.
type Users struct {
	db   *gorm.DB
	seen sync.Map
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Remember upserts u once per process and per distinct email.
func (u *Users) Remember(ctx context.Context, user models.User) error {
	if user.ID == "" || user.Email == "" {
		return nil
	}
	if prev, ok := u.seen.Load(user.ID); ok && prev.(string) == user.Email {
		return nil
	}
	err := u.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "name", "updated_at"}),
		}).
		Create(&user).
		Error
	if err != nil {
		return Classify(err)
	}
	u.seen.Store(user.ID, user.Email)
	return nil
}

func (u *Users) Find(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Scopes(scopes.WithID(id)).Take(&user).Error
	return user, Classify(err)
}
