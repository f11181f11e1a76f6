// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"net"
	"time"
)

// closeTimeout bounds how long MetricsServer.Stop waits for in-flight
// HTTP requests to finish; Stop returns when they finish or the
// timeout passes, whichever comes first.
const closeTimeout = 5 * time.Second

func newListener(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}
