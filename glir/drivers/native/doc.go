// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package native provides a glir driver on top of the gogpu/wgpu HAL.
//
// Render buffers and textures become hal.Texture objects with a default
// view, buffers become hal.Buffer objects and program sources are compiled
// from WGSL to SPIR-V with naga before a hal.ShaderModule is created.
// Framebuffers exist only on the host: the driver validates them and builds
// a hal.RenderPassDescriptor from their attachment views.
//
// # Device Sharing
//
// The driver never owns the device it is given. Hosts that already have a
// device (for example a gogpu application) pass any value exposing
// HalDevice() any and HalQueue() any to glir.Open:
//
//	import _ "github.com/gogpu/gloo/glir/drivers/native"
//
//	d, err := glir.Open("native", provider)
//
// With a nil provider the factory opens a standalone Vulkan device, which
// the driver then releases on Close.
//
// # Formats
//
// Color formats map to RGBA8Unorm and depth or stencil formats to
// Depth24PlusStencil8. Only RGBA8 color storage accepts uploads and reads.
package native
