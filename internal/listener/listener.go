// Package listener accepts execution requests on a TCP (hostname, port)
// pair and hands each one to a handler, one goroutine per connection. It is
// the Go analogue of the original's PythonExecuteServer: stdin/stdout carry
// no control traffic, only the socket does.
package listener

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"
)

// defaultReadTimeout bounds how long a connection may sit idle between
// requests before it is dropped (§5: "internal/listener applies a
// per-connection read deadline").
const defaultReadTimeout = 5 * time.Minute

// Request is one line of a connection's request stream.
type Request struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// Response is written back for every Request received.
type Response struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Handler processes one decoded Request and produces its Response payload.
type Handler func(req Request) (json.RawMessage, error)

// Server accepts connections on (Hostname, Port) and dispatches every
// line-delimited JSON request it reads to Handle.
type Server struct {
	Hostname string
	Port     int
	Handle   Handler
	Log      *zap.Logger
	// ReadTimeout bounds how long a read may block before the connection is
	// dropped. Zero means defaultReadTimeout.
	ReadTimeout time.Duration

	listener net.Listener
}

func (s *Server) readTimeout() time.Duration {
	if s.ReadTimeout > 0 {
		return s.ReadTimeout
	}
	return defaultReadTimeout
}

// ListenAndServe binds the listening socket and serves connections until
// Close is called or Accept returns an error; any Accept error, temporary
// or not, ends the loop and is returned. One
// goroutine is spawned per accepted connection; within a connection,
// requests are read and handled strictly one at a time — the next read only
// happens after the current request's response has been written.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.Hostname, s.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listener: bind %s: %w", addr, err)
	}
	s.listener = ln
	s.logger().Info("listening", zap.String("addr", addr))

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.serveConn(conn)
	}
}

// Close stops accepting new connections. Connections already accepted are
// not closed: they keep serving requests until the peer closes them, a
// read fails, or a read deadline expires.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	log := s.logger().With(zap.String("remote", conn.RemoteAddr().String()))
	log.Debug("connection accepted")

	reader := bufio.NewReader(conn)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(s.readTimeout())); err != nil {
			log.Error("setting read deadline", zap.Error(err))
			return
		}
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			s.handleLine(conn, log, line)
		}
		if err != nil {
			if err != io.EOF {
				log.Error("connection read failed", zap.Error(err))
			}
			log.Debug("connection closed")
			return
		}
	}
}

func (s *Server) handleLine(conn net.Conn, log *zap.Logger, line []byte) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		log.Error("malformed request", zap.Error(err))
		writeResponse(conn, Response{Error: err.Error()})
		return
	}

	payload, err := s.Handle(req)
	resp := Response{ID: req.ID, Payload: payload}
	if err != nil {
		resp.Error = err.Error()
		log.Error("handler failed", zap.String("request_id", req.ID), zap.Error(err))
	}
	writeResponse(conn, resp)
}

func writeResponse(conn net.Conn, resp Response) {
	enc := json.NewEncoder(conn)
	_ = enc.Encode(resp) // a write failure here only affects this one caller
}

func (s *Server) logger() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}
