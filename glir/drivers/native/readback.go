// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gloo/glir"
)

// copyPitchAlignment is the WebGPU bytesPerRow alignment for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// ReadPixels copies a color texture or render buffer into a staging buffer
// and returns its rows as tightly packed RGBA8, top row first.
func (d *Driver) ReadPixels(h glir.Handle, shape glir.Shape) ([]byte, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	r, err := d.resource(h)
	if err != nil {
		return nil, err
	}
	if r.tex == nil {
		return nil, glir.Errorf(glir.StatusInvalidOperation, "native: %s %s has no texture storage", r.kind, r.id)
	}
	if !r.format.IsColor() {
		return nil, glir.Errorf(glir.StatusInvalidOperation, "native: cannot read back %s storage", r.format)
	}
	if shape != r.shape {
		return nil, glir.Errorf(glir.StatusInvalidValue, "native: read %s from %s storage", shape, r.shape)
	}

	w, hgt := uint32(shape.Width), uint32(shape.Height) //nolint:gosec // G115: shape validated on resize
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(hgt)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: d.labelFor(r, "_readback"),
	})
	if err != nil {
		return nil, glir.Errorf(glir.StatusOutOfMemory, "native: create command encoder: %v", err)
	}
	if err := encoder.BeginEncoding(d.labelFor(r, "_readback")); err != nil {
		return nil, glir.Errorf(glir.StatusInvalidOperation, "native: begin encoding: %v", err)
	}

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: d.labelFor(r, "_staging"),
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, glir.Errorf(glir.StatusOutOfMemory, "native: create staging buffer: %v", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(r.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: hgt},
		TextureBase:  hal.ImageCopyTexture{Texture: r.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: hgt, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return nil, glir.Errorf(glir.StatusInvalidOperation, "native: end encoding: %v", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return nil, glir.Errorf(glir.StatusOutOfMemory, "native: create fence: %v", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, d.lose("submit: " + err.Error())
	}
	ok, err := d.device.Wait(fence, 1, d.timeout)
	if err != nil || !ok {
		msg := "wait for GPU timed out"
		if err != nil {
			msg = "wait for GPU: " + err.Error()
		}
		return nil, d.lose(msg)
	}

	readback := make([]byte, stagingSize)
	if err := d.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, glir.Errorf(glir.StatusInvalidOperation, "native: read staging buffer: %v", err)
	}
	if alignedBytesPerRow == bytesPerRow {
		return readback, nil
	}

	// Strip per-row padding.
	tight := make([]byte, uint64(bytesPerRow)*uint64(hgt))
	for row := 0; row < int(hgt); row++ {
		src := row * int(alignedBytesPerRow)
		dst := row * int(bytesPerRow)
		copy(tight[dst:dst+int(bytesPerRow)], readback[src:src+int(bytesPerRow)])
	}
	return tight, nil
}

// lose marks the device as lost. Every later call fails with an error
// wrapping glir.ErrContextLost.
func (d *Driver) lose(msg string) error {
	d.lost = true
	d.logger.Error("native: device lost", "reason", msg)
	return glir.Lost("native: " + msg)
}
