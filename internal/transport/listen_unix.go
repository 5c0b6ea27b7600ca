// Copyright (C) 2023 - Tillitis AB
// SPDX-License-Identifier: GPL-2.0-only

//go:build unix

package transport

import (
	"fmt"
	"net"
	"syscall"
)

// Listen creates the UNIX-domain socket at path, accessible only by the
// current user.
func Listen(path string) (net.Listener, error) {
	syscall.Umask(0o077)

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("Listen: %w", err)
	}
	return l, nil
}

// Dial connects to a signer listening at path.
func Dial(path string) (net.Conn, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("Dial: %w", err)
	}
	return conn, nil
}
