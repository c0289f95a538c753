package driven

import (
	"context"

	"github.com/custodia-labs/graphcal/internal/core/domain"
)

// DeviceCodeNotifier receives the sign-in instruction once a device flow has
// started. Implementations display it to the user; they must not block for
// long, as polling starts when the call returns.
type DeviceCodeNotifier interface {
	NotifyDeviceCode(ctx context.Context, session domain.DeviceFlowSession)
}

// NotifierFunc adapts a function to DeviceCodeNotifier.
type NotifierFunc func(ctx context.Context, session domain.DeviceFlowSession)

// NotifyDeviceCode calls f.
func (f NotifierFunc) NotifyDeviceCode(ctx context.Context, session domain.DeviceFlowSession) {
	f(ctx, session)
}
