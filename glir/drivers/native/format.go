// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gloo/glir"
)

// textureFormat maps a storage format to a HAL texture format and usage.
// Render buffers are attachment-only; textures may also be sampled.
func textureFormat(kind glir.Kind, f glir.Format) (gputypes.TextureFormat, gputypes.TextureUsage, error) {
	usage := gputypes.TextureUsageRenderAttachment
	if kind == glir.KindTexture {
		usage |= gputypes.TextureUsageTextureBinding
	}

	switch {
	case f.IsColor():
		return gputypes.TextureFormatRGBA8Unorm, usage | gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst, nil
	case f.IsDepth(), f.IsStencil():
		if kind == glir.KindTexture && f.IsStencil() {
			return 0, 0, glir.Errorf(glir.StatusInvalidEnum, "native: stencil texture")
		}
		return gputypes.TextureFormatDepth24PlusStencil8, usage, nil
	}
	return 0, 0, glir.Errorf(glir.StatusInvalidEnum, "native: unsupported format %s", f)
}

// isRGBA8 reports whether f is stored byte-for-byte as RGBA8Unorm.
func isRGBA8(f glir.Format) bool {
	return f == glir.FormatColor || f == glir.FormatRGBA8
}
