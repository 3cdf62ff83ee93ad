package resp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Protocol limits applied while decoding replies.
const (
	// MaxArrayLen limits the number of elements in a single array reply.
	MaxArrayLen = 1 << 20

	// MaxBulkLen matches the server-side maximum string size (512MB).
	MaxBulkLen = 512 * 1024 * 1024

	// MaxDepth limits nesting of array replies.
	MaxDepth = 32

	// maxHeaderLen bounds type/length header lines and simple strings.
	maxHeaderLen = 64 * 1024
)

var (
	ErrProtocol      = errors.New("resp: protocol error")
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

// WriteCommand encodes args as a RESP array of bulk strings and flushes w.
func WriteCommand(w *bufio.Writer, args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: empty command", ErrProtocol)
	}
	if _, err := w.WriteString("*" + strconv.Itoa(len(args)) + "\r\n"); err != nil {
		return err
	}
	for _, a := range args {
		if _, err := w.WriteString("$" + strconv.Itoa(len(a)) + "\r\n"); err != nil {
			return err
		}
		if _, err := w.WriteString(a); err != nil {
			return err
		}
		if _, err := w.WriteString("\r\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteReply encodes r without flushing w. Strings are always sent as
// bulk strings so any byte sequence survives.
func WriteReply(w *bufio.Writer, r Reply) error {
	switch v := r.(type) {
	case nil, Nil:
		_, err := w.WriteString("$-1\r\n")
		return err
	case Error:
		_, err := w.WriteString("-" + strings.NewReplacer("\r", " ", "\n", " ").Replace(string(v)) + "\r\n")
		return err
	case Integer:
		_, err := w.WriteString(":" + strconv.FormatInt(int64(v), 10) + "\r\n")
		return err
	case String:
		if _, err := w.WriteString("$" + strconv.Itoa(len(v)) + "\r\n"); err != nil {
			return err
		}
		_, err := w.WriteString(string(v) + "\r\n")
		return err
	case Array:
		if _, err := w.WriteString("*" + strconv.Itoa(len(v)) + "\r\n"); err != nil {
			return err
		}
		for _, elem := range v {
			if err := WriteReply(w, elem); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: cannot encode %T", ErrProtocol, r)
	}
}

// ReadReply decodes exactly one reply from r.
func ReadReply(r *bufio.Reader) (Reply, error) {
	return readReply(r, 0)
}

func readReply(r *bufio.Reader, depth int) (Reply, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, MaxDepth)
	}

	line, err := readLine(r, maxHeaderLen)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return nil, fmt.Errorf("%w: empty reply header", ErrProtocol)
	}

	switch line[0] {
	case '+':
		return String(line[1:]), nil
	case '-':
		return Error(line[1:]), nil
	case ':':
		n, err := strconv.ParseInt(line[1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line[1:])
		}
		return Integer(n), nil
	case '$':
		return readBulk(r, line)
	case '*':
		return readArray(r, line, depth)
	default:
		return nil, fmt.Errorf("%w: unexpected reply type %q", ErrProtocol, line[0])
	}
}

func readBulk(r *bufio.Reader, header string) (Reply, error) {
	n, err := strconv.Atoi(strings.TrimSpace(header[1:]))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid bulk length", ErrProtocol)
	}
	if n == -1 {
		return Nil{}, nil
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: invalid bulk length", ErrProtocol)
	}
	if n > MaxBulkLen {
		return nil, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, n, MaxBulkLen)
	}

	buf := make([]byte, n+2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	if !bytes.HasSuffix(buf, []byte("\r\n")) {
		return nil, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}
	return String(buf[:n]), nil
}

func readArray(r *bufio.Reader, header string, depth int) (Reply, error) {
	n, err := strconv.Atoi(strings.TrimSpace(header[1:]))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid array length", ErrProtocol)
	}
	if n == -1 {
		return Nil{}, nil
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: invalid array length", ErrProtocol)
	}
	if n > MaxArrayLen {
		return nil, fmt.Errorf("%w: array length %d exceeds limit %d", ErrLimitExceeded, n, MaxArrayLen)
	}

	out := make(Array, 0, n)
	for i := 0; i < n; i++ {
		elem, err := readReply(r, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, elem)
	}
	return out, nil
}

func readLine(r *bufio.Reader, maxLen int) (string, error) {
	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		if err == nil {
			buf = append(buf, frag...)
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			buf = append(buf, frag...)
			if len(buf) > maxLen {
				return "", fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, maxLen)
			}
			continue
		}
		return "", err
	}

	if len(buf) > maxLen {
		return "", fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, maxLen)
	}
	if len(buf) < 2 || !bytes.HasSuffix(buf, []byte("\r\n")) {
		return "", fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}

	return string(bytes.TrimSuffix(buf, []byte("\r\n"))), nil
}
