// Package gloo provides logical GPU objects whose driver work is deferred.
//
// # Overview
//
// Client code creates render buffers, textures, framebuffers, buffers and
// programs through a Context. Each object has a stable logical ID and
// validates its arguments synchronously; every accepted mutation is turned
// into a command (CREATE, SIZE, ATTACH, DATA, DELETE) and appended to the
// context's queue. A driver applies the queue later, on whichever goroutine
// owns the graphics context.
//
// Objects can therefore be built before any graphics context exists, or
// from goroutines that never touch it.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/gloo"
//	    "github.com/gogpu/gloo/glir/drivers/soft"
//	)
//
//	ctx := gloo.NewContext()
//	defer ctx.Close()
//
//	rb, _ := gloo.NewRenderBuffer(ctx, []int{480, 640}, gloo.FormatColor, true)
//	fb, _ := gloo.NewFrameBuffer(ctx, rb, nil, nil, true)
//	_ = fb.Resize([]int{240, 320})
//
//	// Nothing has reached a driver yet.
//	_ = ctx.Bind(soft.New())
//
//	px, _ := fb.Read(gloo.Color, true) // px.Shape() == [240 320 4]
//
// # Ordering
//
// The queue keeps one total order across all producers. Read and Validate
// apply every queued command before they look at the driver, so they
// always observe earlier writes.
//
// # Errors
//
// Validation errors (ErrInvalidShape, ErrImmutableResource,
// ErrTypeMismatch, ...) are returned by the call that violates the
// contract and nothing is queued. Errors the driver reports while applying
// commands arrive later, as *glir.DriverStateError values, through the
// callback set with WithErrorHandler.
//
// # Context Loss
//
// When the driver context is lost, Flush and Run return an error wrapping
// glir.ErrContextLost. Recreate binds a new driver and rebuilds every live
// object on it. With the journal enabled (the default) contents are
// restored too.
//
// # Drivers
//
// Drivers live under glir/drivers and register themselves with glir:
//   - soft: host-memory reference driver
//   - native: gogpu/wgpu HAL driver
package gloo
