package fireplace

import "context"

// Driver actuates the appliance for a validated call. An implementation
// performs its side effects, commits the call with Apply and then calls Publish.
type Driver interface {
	Control(ctx context.Context, f *Fireplace, c *Call) error
}

// DriverFunc adapts a function to Driver.
type DriverFunc func(ctx context.Context, f *Fireplace, c *Call) error

func (fn DriverFunc) Control(ctx context.Context, f *Fireplace, c *Call) error {
	return fn(ctx, f, c)
}

// StateDriver commits calls without touching any hardware.
type StateDriver struct{}

func (StateDriver) Control(ctx context.Context, f *Fireplace, c *Call) error {
	f.Apply(c)
	f.Publish(ctx)
	return nil
}
