package orders

import (
	"context"
	"fmt"

	"github.com/maisydat/sheetbridge/pkg/logger"
	"github.com/maisydat/sheetbridge/pkg/redis"
)

// ExportFlags tracks which orders already reached the sheet, so repeated
// completion events for the same order append only once.
type ExportFlags interface {
	AlreadyExported(ctx context.Context, orderID string) bool
	MarkExported(ctx context.Context, orderID string)
}

type redisFlags struct {
	client *redis.Client
	logger *logger.Logger
}

// NewExportFlags returns redis-backed export flags. Backend failures are
// soft: an unreadable flag counts as not exported, a failed mark is logged
// and dropped (the next duplicate event then slips through, which the
// sheet tolerates better than a lost order).
func NewExportFlags(client *redis.Client, logg *logger.Logger) ExportFlags {
	return &redisFlags{client: client, logger: logg}
}

func (f *redisFlags) AlreadyExported(ctx context.Context, orderID string) bool {
	if f.client == nil {
		return false
	}
	val, err := f.client.Get(ctx, f.client.OrderExportKey(orderID))
	if err != nil {
		f.logger.Warn(ctx, fmt.Sprintf("export flag read failed for order %s: %v", orderID, err))
		return false
	}
	return val != ""
}

func (f *redisFlags) MarkExported(ctx context.Context, orderID string) {
	if f.client == nil {
		return
	}
	if _, err := f.client.SetNX(ctx, f.client.OrderExportKey(orderID), "1", 0); err != nil {
		f.logger.Warn(ctx, fmt.Sprintf("export flag write failed for order %s: %v", orderID, err))
	}
}
