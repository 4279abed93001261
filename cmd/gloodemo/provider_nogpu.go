//go:build nogpu

package main

import "fmt"

func openProvider(conf config) (any, func(), error) {
	if conf.Driver == "native" {
		return nil, nil, fmt.Errorf("native driver not built (nogpu tag)")
	}
	return nil, func() {}, nil
}
