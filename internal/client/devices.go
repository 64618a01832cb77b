// ABOUTME: Device routes of the changex API
// ABOUTME: Listing, lookup, rename, comment edits and hiding paired devices

package client

import "context"

type deviceEnvelope struct {
	Device Device `json:"device"`
}

type devicesEnvelope struct {
	Devices []Device `json:"devices"`
}

// ListDevices returns one page of devices.
func (c *Client) ListDevices(ctx context.Context, opts ListOptions) (*Page[Device], error) {
	return list[Device](ctx, c, "/devices/list", opts)
}

// DeviceInfo returns a single device.
func (c *Client) DeviceInfo(ctx context.Context, id string) (*Device, error) {
	out, err := post[deviceEnvelope](ctx, c, path("devices", id, "info"), nil)
	if err != nil {
		return nil, err
	}
	return &out.Device, nil
}

// RenameDevice sets the display name of a device.
func (c *Client) RenameDevice(ctx context.Context, id, name string) error {
	return exec(ctx, c, path("devices", id, "rename"), map[string]string{"name": name})
}

// EditDeviceComment sets the operator comment of a device.
func (c *Client) EditDeviceComment(ctx context.Context, id, comment string) error {
	return exec(ctx, c, path("devices", id, "edit"), map[string]string{"comment": comment})
}

// HideDevice removes a device from the operator's list.
func (c *Client) HideDevice(ctx context.Context, id string) error {
	return exec(ctx, c, path("devices", id, "hide"), nil)
}

// DeviceFilterOptions lists devices usable as a filter or card target.
func (c *Client) DeviceFilterOptions(ctx context.Context) ([]Device, error) {
	out, err := post[devicesEnvelope](ctx, c, "/filters/devices", nil)
	if err != nil {
		return nil, err
	}
	return out.Devices, nil
}
