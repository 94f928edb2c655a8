package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/forgemcp/mcpcore/internal/events"
)

// stdioSessionID is the session id assigned to the single logical client on
// the other end of a Stdio connection: stdin/stdout carries exactly one
// peer, unlike a socket-based transport that mints one per connection.
const stdioSessionID = "stdio"

// Stdio is a newline-delimited JSON-RPC transport over a reader/writer
// pair, the shape every stdio-launched MCP server uses: a host process
// launches the server and speaks JSON-RPC 2.0 over its stdin/stdout.
type Stdio struct {
	reader *bufio.Reader
	writer io.Writer
	writeMu sync.Mutex

	engine InboundHandler
	sink   events.Sink
}

// NewStdio builds a Stdio transport reading r and writing to w.
func NewStdio(r io.Reader, w io.Writer, engine InboundHandler, sink events.Sink) *Stdio {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Stdio{
		reader: bufio.NewReader(r),
		writer: w,
		engine: engine,
		sink:   sink,
	}
}

// Send writes payload followed by a newline. sessionID is accepted to
// satisfy engine.Sender; stdio has only one peer, so it is unused.
func (s *Stdio) Send(ctx context.Context, sessionID string, payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.writer.Write(payload); err != nil {
		return err
	}
	_, err := s.writer.Write([]byte("\n"))
	return err
}

type lineResult struct {
	line []byte
	err  error
}

// Run reads newline-delimited JSON-RPC messages until ctx is cancelled or
// the reader reaches EOF, dispatching each through engine.HandleInbound and
// writing back whatever reply it produces.
func (s *Stdio) Run(ctx context.Context) error {
	defer s.engine.NotifyClosed(s)

	lines := make(chan lineResult)
	go func() {
		defer close(lines)
		for {
			line, err := s.reader.ReadBytes('\n')
			if len(line) > 0 {
				line = append([]byte(nil), line...)
			}
			select {
			case lines <- lineResult{line, err}:
				if err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case r, ok := <-lines:
			if !ok {
				return nil
			}

			line := bytes.TrimSpace(r.line)
			if len(line) > 0 {
				s.dispatch(ctx, line)
			}

			if r.err != nil {
				if r.err == io.EOF {
					return nil
				}
				return fmt.Errorf("read from stdin: %w", r.err)
			}
		}
	}
}

func (s *Stdio) dispatch(ctx context.Context, line []byte) {
	reply, err := s.engine.HandleInbound(ctx, s, stdioSessionID, nil, line)
	if err != nil {
		s.sink.Publish(events.NewErrorEvent(stdioSessionID, "transport", err, "stdio dispatch failed"))
		return
	}
	if reply == nil {
		return
	}
	if err := s.Send(ctx, stdioSessionID, reply); err != nil {
		s.sink.Publish(events.NewErrorEvent(stdioSessionID, "transport", err, "stdio write failed"))
	}
}
