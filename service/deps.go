package service

import (
	"clutch-review/dto"
	"clutch-review/repository"
	"context"
	"time"
)

// Notifier hands notification events to the mailer.
type Notifier interface {
	Notify(ctx context.Context, notification dto.Notification) error
}

// BanList is the fast lookup of disabled accounts consulted on every request.
type BanList interface {
	Ban(ctx context.Context, userID, reason string) error
	Unban(ctx context.Context, userID string) error
	IsBanned(ctx context.Context, userID string) (bool, error)
}

// ObjectStore removes uploaded video files.
type ObjectStore interface {
	RemoveObject(ctx context.Context, objectKey string) error
	RemovePrefix(ctx context.Context, prefix string) (int, error)
}

type Deps struct {
	Repo     repository.Repository
	Notifier Notifier
	Bans     BanList
	Objects  ObjectStore
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Notifier == nil {
		d.Notifier = NopNotifier{}
	}
	if d.Bans == nil {
		d.Bans = NopBanList{}
	}
	if d.Objects == nil {
		d.Objects = NopObjectStore{}
	}
	return d
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, dto.Notification) error { return nil }

type NopBanList struct{}

func (NopBanList) Ban(context.Context, string, string) error { return nil }
func (NopBanList) Unban(context.Context, string) error { return nil }
func (NopBanList) IsBanned(context.Context, string) (bool, error) { return false, nil }

type NopObjectStore struct{}

func (NopObjectStore) RemoveObject(context.Context, string) error { return nil }
func (NopObjectStore) RemovePrefix(context.Context, string) (int, error) { return 0, nil }
