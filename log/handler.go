// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Format selects the output format of NewHandler.
type Format uint8

const (
	FormatTerminal Format = iota
	FormatJSON
	FormatLogfmt
)

// NewHandler returns a handler writing records at or above lvl in the given format.
// Color only applies to the terminal format. All formats render amounts,
// accumulators and keys the same way, see renderValue.
func NewHandler(wr io.Writer, format Format, lvl *slog.LevelVar, useColor bool) slog.Handler {
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(wr, &slog.HandlerOptions{
			ReplaceAttr: replaceAttr(false),
			Level:       lvl,
		})
	case FormatLogfmt:
		return slog.NewTextHandler(wr, &slog.HandlerOptions{
			ReplaceAttr: replaceAttr(true),
			Level:       lvl,
		})
	default:
		return newTerminalHandler(wr, lvl, useColor)
	}
}

type discardHandler struct{}

// DiscardHandler returns a no-op handler. It drops groups along with everything else.
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

func (h *discardHandler) Handle(_ context.Context, _ slog.Record) error { return nil }

func (h *discardHandler) Enabled(_ context.Context, _ slog.Level) bool { return false }

func (h *discardHandler) WithGroup(_ string) slog.Handler { return h }

func (h *discardHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

// terminalState is shared by a terminal handler and every handler derived from it,
// so that derived loggers write whole lines and keep one padding table.
type terminalState struct {
	mu       sync.Mutex
	wr       io.Writer
	useColor bool
	// fieldPadding holds the widest value seen per key, to align columns.
	fieldPadding map[string]int
	buf          []byte
}

// TerminalHandler formats records for a human reading a terminal:
//
//	[LEVEL] [TIME] MESSAGE key=value key=value ...
//
// Example:
//
//	INFO [10-19|09:12:45.000] rewards harvested   op=harvest stake=4Zq7..Fe1c paid=13
//
// Groups are written as dotted key prefixes.
type TerminalHandler struct {
	state  *terminalState
	lvl    *slog.LevelVar
	prefix string
	attrs  []slog.Attr
}

func newTerminalHandler(wr io.Writer, lvl *slog.LevelVar, useColor bool) *TerminalHandler {
	return &TerminalHandler{
		state: &terminalState{
			wr:           wr,
			useColor:     useColor,
			fieldPadding: make(map[string]int),
		},
		lvl: lvl,
	}
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(attr slog.Attr) bool {
		attrs = flattenAttr(attrs, h.prefix, attr)
		return true
	})

	s := h.state
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := s.format(s.buf, r, attrs)
	_, err := s.wr.Write(buf)
	s.buf = buf[:0]
	return err
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &TerminalHandler{
		state:  h.state,
		lvl:    h.lvl,
		prefix: h.prefix + name + ".",
		attrs:  h.attrs,
	}
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, attr := range attrs {
		merged = flattenAttr(merged, h.prefix, attr)
	}
	return &TerminalHandler{
		state:  h.state,
		lvl:    h.lvl,
		prefix: h.prefix,
		attrs:  merged,
	}
}

// flattenAttr appends attr to dst with its key qualified by prefix, expanding group values.
func flattenAttr(dst []slog.Attr, prefix string, attr slog.Attr) []slog.Attr {
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() != slog.KindGroup {
		if attr.Equal(slog.Attr{}) {
			return dst
		}
		attr.Key = prefix + attr.Key
		return append(dst, attr)
	}
	inner := prefix
	if attr.Key != "" {
		inner = prefix + attr.Key + "."
	}
	for _, member := range attr.Value.Group() {
		dst = flattenAttr(dst, inner, member)
	}
	return dst
}

// replaceAttr maps the slog built-in keys to the short forms used on the terminal
// and renders values through renderValue.
func replaceAttr(logfmt bool) func([]string, slog.Attr) slog.Attr {
	return func(_ []string, attr slog.Attr) slog.Attr {
		switch attr.Key {
		case slog.TimeKey:
			if attr.Value.Kind() == slog.KindTime {
				if logfmt {
					return slog.String("t", attr.Value.Time().Format(timeFormat))
				}
				return slog.Attr{Key: "t", Value: attr.Value}
			}
		case slog.LevelKey:
			if l, ok := attr.Value.Any().(slog.Level); ok {
				return slog.String("lvl", LevelString(l))
			}
		}
		if attr.Value.Kind() == slog.KindTime && logfmt {
			return slog.String(attr.Key, attr.Value.Time().Format(timeFormat))
		}
		if attr.Value.Kind() == slog.KindAny {
			if text, ok := renderValue(attr.Value.Any()); ok {
				attr.Value = slog.StringValue(text)
			}
		}
		return attr
	}
}
