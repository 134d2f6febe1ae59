package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rohits-web03/notevault/internal/models"
)

// Users is the credential store.
type Users struct {
	db *gorm.DB
}

// Create inserts a user. A unique index violation surfaces as gorm.ErrDuplicatedKey.
func (r *Users) Create(u *models.User) error {
	return r.db.Create(u).Error
}

// ByID returns gorm.ErrRecordNotFound when no user has the id.
func (r *Users) ByID(id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ByEmail returns gorm.ErrRecordNotFound when no user has the email.
func (r *Users) ByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UsernameTaken reports whether another user than except owns username.
func (r *Users) UsernameTaken(username string, except uuid.UUID) (bool, error) {
	return r.taken("username", username, except)
}

// EmailTaken reports whether another user than except owns email.
func (r *Users) EmailTaken(email string, except uuid.UUID) (bool, error) {
	return r.taken("email", email, except)
}

func (r *Users) taken(column, value string, except uuid.UUID) (bool, error) {
	var count int64
	q := r.db.Model(&models.User{}).Where(column+" = ?", value)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check %s: %w", column, err)
	}
	return count > 0, nil
}

// UpdateProfile writes username and email.
func (r *Users) UpdateProfile(u *models.User) error {
	return r.db.Model(u).Select("username", "email", "updated_at").Updates(u).Error
}

// UpdatePassword writes the password hash.
func (r *Users) UpdatePassword(id uuid.UUID, hash string) error {
	return r.db.Model(&models.User{ID: id}).Update("password", hash).Error
}

// Delete removes the user, their notes and those notes' tag associations.
// Tags themselves are kept.
func (r *Users) Delete(id uuid.UUID) error {
	owned := r.db.Model(&models.Note{}).Select("id").Where("user_id = ?", id)
	if err := r.db.Exec("DELETE FROM note_tags WHERE note_id IN (?)", owned).Error; err != nil {
		return fmt.Errorf("delete note tags: %w", err)
	}
	if err := r.db.Where("user_id = ?", id).Delete(&models.Note{}).Error; err != nil {
		return fmt.Errorf("delete notes: %w", err)
	}
	res := r.db.Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
