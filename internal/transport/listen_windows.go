// Copyright (C) 2023 - Tillitis AB
// SPDX-License-Identifier: BSD-2-Clause

//go:build windows

package transport

import (
	"fmt"
	"net"
	"os/user"

	"github.com/Microsoft/go-winio"
)

// Listen creates the named pipe at path, accessible only by the current
// user.
func Listen(path string) (net.Listener, error) {
	// Create a SecurityDescriptor that makes the named pipe created
	// by ListenPipe accessible only by the current user
	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("user.Current: %w", err)
	}
	pipeConf := &winio.PipeConfig{
		SecurityDescriptor: "D:(A;;FA;;;" + currentUser.Uid + ")",
		InputBufferSize:    4096,
		OutputBufferSize:   4096,
	}

	l, err := winio.ListenPipe(path, pipeConf)
	if err != nil {
		return nil, fmt.Errorf("ListenPipe: %w", err)
	}
	return l, nil
}

// Dial connects to a signer listening on the named pipe at path.
func Dial(path string) (net.Conn, error) {
	conn, err := winio.DialPipe(path, nil)
	if err != nil {
		return nil, fmt.Errorf("DialPipe: %w", err)
	}
	return conn, nil
}
