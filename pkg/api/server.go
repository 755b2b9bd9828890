// Package api is the caller-facing surface of the engine: newline-delimited
// JSON commands in, one JSON response line out per command.
package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/2019UGEC100/matching-core/pkg/engine"
	"github.com/2019UGEC100/matching-core/pkg/logger"
	"github.com/2019UGEC100/matching-core/pkg/model"
)

const maxLineSize = 1 << 20

// Command is one decoded input line. Only the fields of its Op are read.
type Command struct {
	Op      string              `json:"op"`
	Order   *OrderRequest       `json:"order,omitempty"`
	OrderID string              `json:"order_id,omitempty"`
	Side    model.Side          `json:"side,omitempty"`
	Price   decimal.NullDecimal `json:"price"`
	Depth   int                 `json:"depth,omitempty"`
}

// OrderRequest is a submit payload. Triggered releases a stop order for
// matching, standing in for the external trigger service.
type OrderRequest struct {
	model.Request
	Triggered bool `json:"triggered,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Server dispatches commands to one Engine. Orders are stamped by src.
type Server struct {
	engine  *engine.Engine
	src     model.IDSource
	log     *logger.Logger
	started time.Time
}

func NewServer(e *engine.Engine, src model.IDSource, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{engine: e, src: src, log: log, started: time.Now()}
}

// Serve reads commands from r until EOF or ctx is done and writes each
// response to w. A bad line gets an error response; it never stops the loop.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	enc := json.NewEncoder(w)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := enc.Encode(s.Handle(line)); err != nil {
			return errors.Wrap(err, "writing response")
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "reading commands")
	}
	return nil
}

// Handle decodes and executes a single command line.
func (s *Server) Handle(line []byte) any {
	var cmd Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		return errorResponse(errors.Wrap(err, "invalid command"))
	}
	return s.Dispatch(cmd)
}

// Dispatch runs a decoded command.
func (s *Server) Dispatch(cmd Command) any {
	switch cmd.Op {
	case "submit":
		return s.submit(cmd)
	case "cancel":
		return s.cancel(cmd)
	case "order":
		return s.order(cmd)
	case "best":
		return s.best()
	case "depth":
		return s.depth(cmd)
	case "book":
		return s.book(cmd)
	case "stats":
		return s.stats()
	case "health":
		return s.health()
	case "":
		return ErrorResponse{Error: "missing op", Field: "op"}
	}
	return ErrorResponse{Error: "unknown op " + cmd.Op, Field: "op"}
}

func errorResponse(err error) ErrorResponse {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return ErrorResponse{Error: ve.Message, Field: ve.Field}
	}
	return ErrorResponse{Error: err.Error()}
}
