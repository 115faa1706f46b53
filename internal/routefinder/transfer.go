package routefinder

import (
	"context"
	"errors"
)

// ErrTransferSearchNotImplemented is what the default TransferSearcher returns.
// The finder treats it as "no journeys with transfers".
var ErrTransferSearchNotImplemented = errors.New("transfer search is not implemented")

// TransferSearcher finds journeys needing at least one change of bus.
// A real implementation needs transfer-point discovery over the stop/route graph
// and a walking-time penalty; it is kept apart from the direct matcher on purpose.
type TransferSearcher interface {
	FindTransfers(ctx context.Context, catalog Catalog, req Request, limit int) ([]JourneyOption, error)
}

type unimplementedTransfers struct{}

func (unimplementedTransfers) FindTransfers(context.Context, Catalog, Request, int) ([]JourneyOption, error) {
	return nil, ErrTransferSearchNotImplemented
}
