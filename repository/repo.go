package repository

import (
	"clutch-review/constant"
	"clutch-review/entities"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("record not found")

type Repository interface {
	// Transaction runs callback against a repository bound to one database transaction.
	// Returning an error from callback rolls everything back.
	Transaction(ctx context.Context, callback func(repo Repository) error) error
	Migrate(ctx context.Context) error

	CreateUser(ctx context.Context, user *entities.User) error
	FindUserByID(ctx context.Context, id string) (*entities.User, error)
	SaveUser(ctx context.Context, user *entities.User) error
	ListUsers(ctx context.Context) ([]*entities.User, error)
	ListUsersForModeration(ctx context.Context) ([]*entities.User, error)
	IncrementViolation(ctx context.Context, userID string, kind constant.ViolationKind) error
	MarkReviewerActive(ctx context.Context, userID string) error
	DeleteUser(ctx context.Context, id string) error

	CreateVideo(ctx context.Context, video *entities.Video) error
	FindVideo(ctx context.Context, userID, videoID string) (*entities.Video, error)
	SaveVideo(ctx context.Context, video *entities.Video) error
	ListVideosByUser(ctx context.Context, userID string) ([]*entities.Video, error)
	MarkVideoVerified(ctx context.Context, userID, videoID string) error
	DeleteVideosByUser(ctx context.Context, userID string) (int64, error)

	CreatePendingReview(ctx context.Context, entry *entities.PendingReview) error
	FindPendingReview(ctx context.Context, country, videoID, userID string) (*entities.PendingReview, error)
	ListPendingReviews(ctx context.Context, country string) ([]*entities.PendingReview, error)
	CompareAndSwapClaim(ctx context.Context, entry *entities.PendingReview) (bool, error)
	DeletePendingReview(ctx context.Context, country, videoID, userID string) (int64, error)
	DeletePendingReviewsByUser(ctx context.Context, userID string) (int64, error)

	SaveFailedReview(ctx context.Context, review *entities.FailedReview) error
	FindFailedReview(ctx context.Context, videoID string) (*entities.FailedReview, error)
	ListFailedReviews(ctx context.Context, country string) ([]*entities.FailedReview, error)
	DeleteFailedReviewsByUser(ctx context.Context, userID string) (int64, error)

	CreateMessage(ctx context.Context, message *entities.Message) error
	ListMessages(ctx context.Context, userID string) ([]*entities.Message, error)
	DeleteMessagesByUser(ctx context.Context, userID string) (int64, error)

	SaveGroup(ctx context.Context, group *entities.Group) error
	FindGroup(ctx context.Context, name string) (*entities.Group, error)
	ListGroupsByMember(ctx context.Context, userID string) ([]*entities.Group, error)
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) (Repository, error) {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		},
	)
	if err != nil {
		return nil, err
	}
	return &repo{
		db: gormDB,
	}, nil
}

func (r *repo) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *repo) Transaction(ctx context.Context, callback func(repo Repository) error) error {
	return r.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		return callback(&repo{db: tx})
	})
}

func (r *repo) Migrate(ctx context.Context) error {
	return r.getDB(ctx).AutoMigrate(
		&entities.User{},
		&entities.Video{},
		&entities.PendingReview{},
		&entities.FailedReview{},
		&entities.Message{},
		&entities.Group{},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *repo) CreateUser(ctx context.Context, user *entities.User) error {
	return r.getDB(ctx).Create(user).Error
}

func (r *repo) FindUserByID(ctx context.Context, id string) (*entities.User, error) {
	user := &entities.User{}
	err := r.getDB(ctx).First(user, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}

	return user, nil
}

func (r *repo) SaveUser(ctx context.Context, user *entities.User) error {
	return r.getDB(ctx).Save(user).Error
}

func (r *repo) ListUsers(ctx context.Context) ([]*entities.User, error) {
	var users []*entities.User
	err := r.getDB(ctx).Order("created_at ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) ListUsersForModeration(ctx context.Context) ([]*entities.User, error) {
	var users []*entities.User
	err := r.getDB(ctx).
		Where("suspended = ?", false).
		Where("(incorrect_reviews + incorrect_uploads > 0 OR last_warning_date IS NOT NULL)").
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func violationColumn(kind constant.ViolationKind) (string, error) {
	switch kind {
	case constant.ViolationUpload:
		return "incorrect_uploads", nil
	case constant.ViolationReview:
		return "incorrect_reviews", nil
	}
	return "", fmt.Errorf("unknown violation kind %q", kind)
}

func (r *repo) IncrementViolation(ctx context.Context, userID string, kind constant.ViolationKind) error {
	column, err := violationColumn(kind)
	if err != nil {
		return err
	}
	res := r.getDB(ctx).Model(&entities.User{}).Where("id = ?", userID).Update(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) MarkReviewerActive(ctx context.Context, userID string) error {
	res := r.getDB(ctx).Model(&entities.User{}).Where("id = ?", userID).Update("has_reviewed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) DeleteUser(ctx context.Context, id string) error {
	return r.getDB(ctx).Where("id = ?", id).Delete(&entities.User{}).Error
}

func (r *repo) CreateVideo(ctx context.Context, video *entities.Video) error {
	return r.getDB(ctx).Create(video).Error
}

func (r *repo) FindVideo(ctx context.Context, userID, videoID string) (*entities.Video, error) {
	video := &entities.Video{}
	err := r.getDB(ctx).First(video, "id = ? AND user_id = ?", videoID, userID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return video, nil
}

func (r *repo) SaveVideo(ctx context.Context, video *entities.Video) error {
	return r.getDB(ctx).Save(video).Error
}

func (r *repo) ListVideosByUser(ctx context.Context, userID string) ([]*entities.Video, error) {
	var videos []*entities.Video
	err := r.getDB(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *repo) MarkVideoVerified(ctx context.Context, userID, videoID string) error {
	res := r.getDB(ctx).Model(&entities.Video{}).
		Where("id = ? AND user_id = ?", videoID, userID).
		Update("verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) DeleteVideosByUser(ctx context.Context, userID string) (int64, error) {
	res := r.getDB(ctx).Where("user_id = ?", userID).Delete(&entities.Video{})
	return res.RowsAffected, res.Error
}

func (r *repo) CreatePendingReview(ctx context.Context, entry *entities.PendingReview) error {
	return r.getDB(ctx).Create(entry).Error
}

func (r *repo) FindPendingReview(ctx context.Context, country, videoID, userID string) (*entities.PendingReview, error) {
	entry := &entities.PendingReview{}
	err := r.getDB(ctx).
		Where("country = ? AND video_id = ? AND user_id = ?", country, videoID, userID).
		Order("added_at ASC, id ASC").
		First(entry).Error
	if err != nil {
		return nil, notFound(err)
	}
	return entry, nil
}

func (r *repo) ListPendingReviews(ctx context.Context, country string) ([]*entities.PendingReview, error) {
	var entries []*entities.PendingReview
	err := r.getDB(ctx).Where("country = ?", country).Order("added_at ASC, id ASC").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CompareAndSwapClaim writes the claim fields of entry only if the stored version still
// equals entry.Version. On success entry.Version is advanced.
func (r *repo) CompareAndSwapClaim(ctx context.Context, entry *entities.PendingReview) (bool, error) {
	updates := map[string]interface{}{
		"being_reviewed_currently":      entry.BeingReviewedCurrently,
		"claimed_by":                    entry.ClaimedBy,
		"being_reviewed_currently_date": entry.BeingReviewedCurrentlyDate,
		"version":                       entry.Version + 1,
	}
	res := r.getDB(ctx).Model(&entities.PendingReview{}).
		Where("id = ? AND version = ?", entry.ID, entry.Version).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	entry.Version++
	return true, nil
}

func (r *repo) DeletePendingReview(ctx context.Context, country, videoID, userID string) (int64, error) {
	res := r.getDB(ctx).
		Where("country = ? AND video_id = ? AND user_id = ?", country, videoID, userID).
		Delete(&entities.PendingReview{})
	return res.RowsAffected, res.Error
}

func (r *repo) DeletePendingReviewsByUser(ctx context.Context, userID string) (int64, error) {
	res := r.getDB(ctx).Where("user_id = ?", userID).Delete(&entities.PendingReview{})
	return res.RowsAffected, res.Error
}

func (r *repo) SaveFailedReview(ctx context.Context, review *entities.FailedReview) error {
	return r.getDB(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(review).Error
}

func (r *repo) FindFailedReview(ctx context.Context, videoID string) (*entities.FailedReview, error) {
	review := &entities.FailedReview{}
	err := r.getDB(ctx).First(review, "video_id = ?", videoID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return review, nil
}

func (r *repo) ListFailedReviews(ctx context.Context, country string) ([]*entities.FailedReview, error) {
	var reviews []*entities.FailedReview
	err := r.getDB(ctx).Where("country = ?", country).Order("reviewed_at DESC").Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *repo) DeleteFailedReviewsByUser(ctx context.Context, userID string) (int64, error) {
	res := r.getDB(ctx).Where("user_id = ?", userID).Delete(&entities.FailedReview{})
	return res.RowsAffected, res.Error
}

func (r *repo) CreateMessage(ctx context.Context, message *entities.Message) error {
	return r.getDB(ctx).Create(message).Error
}

func (r *repo) ListMessages(ctx context.Context, userID string) ([]*entities.Message, error) {
	var messages []*entities.Message
	err := r.getDB(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *repo) DeleteMessagesByUser(ctx context.Context, userID string) (int64, error) {
	res := r.getDB(ctx).Where("user_id = ?", userID).Delete(&entities.Message{})
	return res.RowsAffected, res.Error
}

func (r *repo) SaveGroup(ctx context.Context, group *entities.Group) error {
	return r.getDB(ctx).Save(group).Error
}

func (r *repo) FindGroup(ctx context.Context, name string) (*entities.Group, error) {
	group := &entities.Group{}
	err := r.getDB(ctx).First(group, "name = ?", name).Error
	if err != nil {
		return nil, notFound(err)
	}
	return group, nil
}

func (r *repo) ListGroupsByMember(ctx context.Context, userID string) ([]*entities.Group, error) {
	var groups []*entities.Group
	err := r.getDB(ctx).Where("(? = ANY(members) OR admin_id = ?)", userID, userID).Order("name ASC").Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}
