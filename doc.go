// Package framed extracts message payloads from a byte stream framed the way the language
// server protocol does it:
//
//	Content-Length: <digits>\r\n
//	[Content-Type: <token>[; charset=utf-8|utf8]\r\n]
//	\r\n
//	<payload>
//
// Parsing is stateless: the caller owns an accumulation buffer, appends incoming bytes to
// it and calls ParseMessage. A Pending result means the buffer must be kept and extended.
// Resynchronization after a framing error is possible with FindNextMessage or Resync, but
// the skipped bytes are lost.
package framed
