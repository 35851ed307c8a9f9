package inventory

import "context"

// IntegrationHandler receives inventory events after an adjustment is stored.
type IntegrationHandler interface {
	HandleInventoryAdjustmentPosted(ctx context.Context, evt AdjustmentPostedEvent) error
}
