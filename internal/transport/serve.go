// SPDX-FileCopyrightText: 2025 Tillitis AB <tillitis.se>
// SPDX-License-Identifier: BSD-2-Clause

// Package transport carries signer requests and responses over a local
// stream connection.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/rs/zerolog"

	"github.com/tillitis/ae-signer/apdu"
	"github.com/tillitis/ae-signer/internal/log"
)

// Handler answers one request.
type Handler interface {
	Handle(req apdu.Request) apdu.Response
}

// Server feeds requests from its clients to a Handler, one connection
// and one request at a time.
type Server struct {
	handler Handler
	log     zerolog.Logger
}

func NewServer(h Handler) *Server {
	return &Server{handler: h, log: log.Transport}
}

// Serve accepts connections on l until it is closed.
func (s *Server) Serve(l net.Listener) error {
	s.log.Info().Str("addr", l.Addr().String()).Msg("listening")

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("Accept: %w", err)
		}

		s.log.Info().Msg("handling a client connection")
		if err := s.ServeConn(conn); err != nil {
			s.log.Warn().Err(err).Msg("client connection ended with error")
		}
		_ = conn.Close()
	}
}

// ServeConn handles requests from rw until the peer closes it.
func (s *Server) ServeConn(rw io.ReadWriter) error {
	for {
		req, err := apdu.ReadRequest(rw)
		if errors.Is(err, io.EOF) {
			return nil
		}

		var resp apdu.Response
		switch {
		case errors.Is(err, apdu.ErrFrameTooLong):
			resp = apdu.Response{SW: apdu.SwWrongApduLength}
		case err != nil:
			return fmt.Errorf("ReadRequest: %w", err)
		case req.CLA != apdu.CLA:
			resp = apdu.Response{SW: apdu.SwClaNotSupported}
		default:
			s.log.Debug().Stringer("ins", req.INS).Msg(apdu.Dump("request data", req.Data))
			resp = s.handler.Handle(req)
		}

		if resp.SW != apdu.SwOK {
			s.log.Debug().Stringer("ins", req.INS).Stringer("sw", resp.SW).Msg("reply")
		}
		if err := apdu.WriteResponse(rw, resp); err != nil {
			return fmt.Errorf("WriteResponse: %w", err)
		}
	}
}
