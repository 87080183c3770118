package core

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// maxLineSize bounds a single protocol line
const maxLineSize = 10 << 20

// RunStdio reads newline-delimited JSON-RPC messages from r and writes each
// response as one line to w. It returns when r is exhausted or ctx is done.
func (s *Server) RunStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	out := bufio.NewWriter(w)

	s.logger.Info("serving MCP over stdio", zap.String("session_id", s.sessionID))
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp, err := s.HandleMessage(ctx, line)
		if err != nil {
			s.logger.Debug("failed to handle message", zap.Error(err))
			resp = ParseErrorResponse(err)
		}
		if resp == nil {
			continue
		}
		if _, err := out.Write(append(resp, '\n')); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("flush response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return nil
}
