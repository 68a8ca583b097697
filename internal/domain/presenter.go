package domain

import "context"

//go:generate mockgen -source=presenter.go -destination=presenter_mock.go -package=domain

type Presenter interface {
	Present(ctx context.Context, intents []NotificationIntent) error
}
