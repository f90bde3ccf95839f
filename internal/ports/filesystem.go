package ports

import (
	"bufio"
	"io"
	"os"

	pkgerrors "github.com/pkg/errors"
)

// OSFileSystem is the default FileSystemPort, backed by the host
// filesystem (spec §6).
type OSFileSystem struct{}

func NewOSFileSystem() *OSFileSystem { return &OSFileSystem{} }

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return pkgerrors.Wrap(err, "remove")
	}
	return nil
}

func (OSFileSystem) Rename(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return pkgerrors.Wrap(err, "rename")
	}
	return nil
}

func (OSFileSystem) Open(path string, mode OpenMode, recordLength int) (FileHandle, error) {
	var flag int
	switch mode {
	case ModeInput:
		flag = os.O_RDONLY
	case ModeOutput:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case ModeAppend:
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case ModeRandom:
		flag = os.O_RDWR | os.O_CREATE
	}
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "open %s", path)
	}
	h := &osFileHandle{f: f}
	if mode != ModeRandom {
		h.reader = bufio.NewReader(f)
	}
	return h, nil
}

// osFileHandle wraps a single *os.File for both sequential (buffered) and
// random-access (raw seek+read/write) use (spec §6 FileHandle).
type osFileHandle struct {
	f      *os.File
	reader *bufio.Reader
	isEOF  bool
}

func (h *osFileHandle) IsOpen() bool { return h.f != nil }

func (h *osFileHandle) Close() error {
	if h.f == nil {
		return nil
	}
	err := h.f.Close()
	h.f = nil
	return err
}

func (h *osFileHandle) ReadLine() (string, bool, error) {
	if h.reader == nil {
		h.reader = bufio.NewReader(h.f)
	}
	line, err := h.reader.ReadString('\n')
	if err == io.EOF {
		h.isEOF = true
		if line == "" {
			return "", false, nil
		}
		return trimEOL(line), true, nil
	}
	if err != nil {
		return "", false, pkgerrors.Wrap(err, "read")
	}
	return trimEOL(line), true, nil
}

func trimEOL(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func (h *osFileHandle) WriteLine(line string) error {
	_, err := h.f.WriteString(line + "\n")
	return pkgerrors.Wrap(err, "write")
}

func (h *osFileHandle) Write(text string) error {
	_, err := h.f.WriteString(text)
	return pkgerrors.Wrap(err, "write")
}

func (h *osFileHandle) ReadChars(n int) (string, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(h.f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", pkgerrors.Wrap(err, "read")
	}
	return string(buf[:read]), nil
}

func (h *osFileHandle) Eof() bool {
	pos, _ := h.f.Seek(0, io.SeekCurrent)
	info, err := h.f.Stat()
	if err != nil {
		return h.isEOF
	}
	return pos >= info.Size()
}

func (h *osFileHandle) Position() int64 {
	pos, _ := h.f.Seek(0, io.SeekCurrent)
	return pos
}

func (h *osFileHandle) Length() int64 {
	info, err := h.f.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

func (h *osFileHandle) SeekRecord(r int, recLen int) error {
	_, err := h.f.Seek(int64(r-1)*int64(recLen), io.SeekStart)
	return pkgerrors.Wrap(err, "seek")
}

func (h *osFileHandle) ReadRaw(buf []byte) (int, error) {
	n, err := io.ReadFull(h.f, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return n, nil
	}
	if err != nil {
		return n, pkgerrors.Wrap(err, "read")
	}
	return n, nil
}

func (h *osFileHandle) WriteRaw(buf []byte) (int, error) {
	n, err := h.f.Write(buf)
	return n, pkgerrors.Wrap(err, "write")
}

func (h *osFileHandle) Flush() error {
	return pkgerrors.Wrap(h.f.Sync(), "flush")
}
