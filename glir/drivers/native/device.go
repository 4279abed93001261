// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	// Register Vulkan HAL backend for standalone devices.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device is a standalone HAL device opened by this package. It satisfies
// the HalDevice/HalQueue provider contract.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string
}

// OpenDevice opens a standalone device. backend is "vulkan" or "noop"; the
// noop backend performs no GPU work and is meant for tests.
func OpenDevice(backend string) (*Device, error) {
	var (
		instance hal.Instance
		err      error
	)
	switch backend {
	case "vulkan", "":
		b, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, fmt.Errorf("native: vulkan backend not available")
		}
		instance, err = b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	case "noop":
		api := noop.API{}
		instance, err = api.CreateInstance(nil)
	default:
		return nil, fmt.Errorf("native: unknown backend %q", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("native: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("native: open device: %w", err)
	}
	return &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		name:     selected.Info.Name,
	}, nil
}

// HalDevice returns the hal.Device.
func (d *Device) HalDevice() any { return d.device }

// HalQueue returns the hal.Queue.
func (d *Device) HalQueue() any { return d.queue }

// Name returns the adapter name.
func (d *Device) Name() string { return d.name }

// Destroy releases the device and its instance.
func (d *Device) Destroy() {
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.queue = nil
}
