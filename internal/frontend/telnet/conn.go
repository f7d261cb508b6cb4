package telnet

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet command and option bytes (RFC 854, RFC 857, RFC 858).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	GA   byte = 249
	NOP  byte = 241
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
)

// MaxLineLength caps a single input line. Bytes past the cap are discarded
// until the line ends.
const MaxLineLength = 512

// iacState tracks where a byte stream is within a Telnet command sequence.
type iacState int

const (
	stData iacState = iota
	stCommand
	stOption
	stSub
	stSubIAC
)

// iacFilter strips Telnet command sequences from a byte stream one byte
// at a time.
type iacFilter struct {
	state iacState
}

// feed consumes b and reports whether it is a data byte.
func (f *iacFilter) feed(b byte) (byte, bool) {
	switch f.state {
	case stCommand:
		switch b {
		case IAC:
			// escaped 0xFF
			f.state = stData
			return IAC, true
		case WILL, WONT, DO, DONT:
			f.state = stOption
		case SB:
			f.state = stSub
		default:
			f.state = stData
		}
	case stOption:
		f.state = stData
	case stSub:
		if b == IAC {
			f.state = stSubIAC
		}
	case stSubIAC:
		if b == SE {
			f.state = stData
		} else {
			f.state = stSub
		}
	default:
		if b == IAC {
			f.state = stCommand
			return 0, false
		}
		return b, true
	}
	return 0, false
}

// FilterIAC removes Telnet command sequences from input. An escaped IAC
// (IAC IAC) yields a single 0xFF; an unterminated sequence at the end of
// input is dropped.
func FilterIAC(input []byte) []byte {
	var f iacFilter
	out := make([]byte, 0, len(input))
	for _, b := range input {
		if d, ok := f.feed(b); ok {
			out = append(out, d)
		}
	}
	return out
}

// Conn is a line-oriented Telnet connection. It satisfies the combat
// package's Input, Output and Prompter interfaces.
//
// ReadLine must be called from one goroutine at a time; writes may come from
// any goroutine.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	filter iacFilter

	wmu          sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw. Zero timeouts disable the corresponding deadline.
//
// Precondition: raw must be an open connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate offers to suppress go-ahead so prompts need no GA marker.
func (c *Conn) Negotiate() error {
	return c.write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next line of text with Telnet commands and control
// characters removed. CR LF, CR NUL, bare CR and bare LF all end a line.
//
// Postcondition: the returned line has no line terminator and at most
// MaxLineLength bytes. On error the partial line read so far is returned.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	var line strings.Builder
	for {
		raw, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}
		b, ok := c.filter.feed(raw)
		if !ok {
			continue
		}
		switch {
		case b == '\n':
			return line.String(), nil
		case b == '\r':
			if next, err := c.reader.Peek(1); err == nil && (next[0] == '\n' || next[0] == 0) {
				_, _ = c.reader.ReadByte()
			}
			return line.String(), nil
		case b < 32 && b != '\t', b == 127:
			continue
		case line.Len() >= MaxLineLength:
			continue
		}
		line.WriteByte(b)
	}
}

// WriteLine sends text followed by CR LF. Embedded LF characters are
// expanded to CR LF.
func (c *Conn) WriteLine(text string) error {
	text = strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\n", "\r\n")
	return c.write([]byte(text + "\r\n"))
}

// WritePrompt sends prompt without a line terminator.
func (c *Conn) WritePrompt(prompt string) error {
	return c.write([]byte(prompt))
}

func (c *Conn) write(p []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(p)
	return err
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
