//go:build !nogpu

package main

import (
	"github.com/gogpu/gloo/glir/drivers/native"
)

// openProvider returns the provider passed to the driver factory. Only the
// native driver needs one; a nil provider makes it open Vulkan itself.
func openProvider(conf config) (provider any, closeFn func(), err error) {
	if conf.Driver != "native" || conf.Backend == "vulkan" || conf.Backend == "" {
		return nil, func() {}, nil
	}
	dev, err := native.OpenDevice(conf.Backend)
	if err != nil {
		return nil, nil, err
	}
	return dev, dev.Destroy, nil
}
