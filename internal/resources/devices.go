// ABOUTME: Device list controller and device pairing flow
// ABOUTME: Edits rename and re-comment concurrently, then reload the device

package resources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/changexio/changex-console/internal/client"
	"github.com/changexio/changex-console/internal/collection"
)

// DevicesAPI is the subset of the API client used for devices.
type DevicesAPI interface {
	ListDevices(ctx context.Context, opts client.ListOptions) (*client.Page[client.Device], error)
	DeviceInfo(ctx context.Context, id string) (*client.Device, error)
	RenameDevice(ctx context.Context, id, name string) error
	EditDeviceComment(ctx context.Context, id, comment string) error
	HideDevice(ctx context.Context, id string) error
	DeviceFilterOptions(ctx context.Context) ([]client.Device, error)
	TempToken(ctx context.Context) (string, error)
	CheckTempToken(ctx context.Context) (string, error)
}

// DeviceView is a device as shown in lists.
type DeviceView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Online  bool   `json:"online"`
	Battery int    `json:"battery"`
	Model   string `json:"model"`
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// Devices is the device list.
type Devices struct {
	*collection.Collection[client.Device, DeviceView]
	api DevicesAPI
}

// NewDevices creates an empty device list.
func NewDevices(api DevicesAPI) *Devices {
	return &Devices{
		api: api,
		Collection: collection.New(collection.Config[client.Device, DeviceView]{
			Name:  "devices",
			Fetch: api.ListDevices,
			ID:    func(d client.Device) string { return d.DeviceID },
			View: func(d client.Device) DeviceView {
				return DeviceView{
					ID:      d.DeviceID,
					Name:    d.Name,
					Online:  d.IsOnline,
					Battery: d.BatteryLevel,
					Model:   d.Model,
					Status:  d.Status,
					Comment: d.Comment,
				}
			},
		}),
	}
}

// Info fetches a single device from the server.
func (d *Devices) Info(ctx context.Context, id string) (*client.Device, error) {
	return d.api.DeviceInfo(ctx, id)
}

// SaveEdit sets a device's name and comment, then replaces the listed
// device with the server's current record.
func (d *Devices) SaveEdit(ctx context.Context, id, name, comment string) (client.Device, error) {
	return d.MutateOne(ctx, id, func(ctx context.Context) (client.Device, error) {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return d.api.RenameDevice(gctx, id, name) })
		g.Go(func() error { return d.api.EditDeviceComment(gctx, id, comment) })
		if err := g.Wait(); err != nil {
			return client.Device{}, err
		}

		device, err := d.api.DeviceInfo(ctx, id)
		if err != nil {
			return client.Device{}, err
		}
		return *device, nil
	})
}

// Remove drops the device locally and hides it in the background.
func (d *Devices) Remove(ctx context.Context, id string) error {
	d.RemoveOne(ctx, id, d.api.HideDevice)
	return nil
}

// FilterOptions lists devices selectable as a card target.
func (d *Devices) FilterOptions(ctx context.Context) ([]client.Device, error) {
	return d.api.DeviceFilterOptions(ctx)
}

// PairingQR requests a pairing token for a new device.
func (d *Devices) PairingQR(ctx context.Context) (string, error) {
	return d.api.TempToken(ctx)
}

// CheckPairing reports whether a device has consumed the pairing token.
func (d *Devices) CheckPairing(ctx context.Context) (bool, error) {
	status, err := d.api.CheckTempToken(ctx)
	if err != nil {
		return false, err
	}
	return status == client.TempTokenDone, nil
}

// WaitForPairing polls CheckPairing every interval until a device pairs or
// ctx ends.
func (d *Devices) WaitForPairing(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		paired, err := d.CheckPairing(ctx)
		if err != nil {
			return err
		}
		if paired {
			return nil
		}
		slog.Debug("Device not paired yet")

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for device pairing: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// Table returns the device list as a Table.
func (d *Devices) Table() Table {
	return &table[client.Device, DeviceView]{
		Collection: d.Collection,
		name:       "devices",
		title:      "Devices",
		columns:    []string{"ID", "Name", "Online", "Model", "Status", "Comment"},
		row: func(v DeviceView) []string {
			return []string{v.ID, v.Name, onlineLabel(v.Online, v.Battery), v.Model, v.Status, v.Comment}
		},
		remove: d.Remove,
	}
}
