package service

import (
	"context"

	"github.com/okian/keyrace/internal/domain/model"
)

// Gateway delivers notices to connected clients. Implementations must not
// block the caller on slow clients.
type Gateway interface {
	Broadcast(ctx context.Context, n model.Notice)
	Send(ctx context.Context, connID string, n model.Notice)
}

// nopGateway is used until a real gateway is wired.
type nopGateway struct{}

func (nopGateway) Broadcast(context.Context, model.Notice)    {}
func (nopGateway) Send(context.Context, string, model.Notice) {}
