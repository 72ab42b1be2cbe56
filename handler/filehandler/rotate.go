package filehandler

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/Amjko2234/ko-log/errs"
)

// rotateIfNeeded checks the size and time triggers and rotates when
// either fires. Must be called with writeMu held and the file already
// open. pendingLen is the length in bytes of the payload about to be
// written, so the size trigger accounts for it before it is written:
// currentSize + len(payload) strictly greater than maxBytes rotates.
func (b *fileBase) rotateIfNeeded(pendingLen int) error {
	needRotate := false

	if b.maxBytes > 0 && b.currentSize+int64(pendingLen) > b.maxBytes {
		needRotate = true
	}
	if !needRotate && b.rotationInterval > 0 && time.Since(b.lastRotationTime) >= b.rotationInterval {
		needRotate = true
	}

	if !needRotate {
		return nil
	}
	return b.rotate()
}

// rotate implements the backup rename chain: P.backupCount is deleted,
// then P.k -> P.(k+1) for descending k, then
// P -> P.1, then P is reopened empty. backupCount == 0 means truncate
// in place with no backups kept.
func (b *fileBase) rotate() error {
	if b.bufw != nil {
		if err := b.bufw.Flush(); err != nil {
			return errs.NewHandlerIOError(b.id, "flush before rotation failed", err, true)
		}
	}
	if b.file != nil {
		if err := b.file.Close(); err != nil {
			return errs.NewHandlerIOError(b.id, "close before rotation failed", err, true)
		}
		b.file = nil
		b.bufw = nil
	}

	if b.backupCount == 0 {
		f, err := os.OpenFile(b.filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return b.recoverReopen(err)
		}
		b.file = f
		b.bufw = bufio.NewWriter(f)
		b.currentSize = 0
		b.lastRotationTime = time.Now()
		return nil
	}

	oldest := fmt.Sprintf("%s.%d", b.filename, b.backupCount)
	if _, err := os.Stat(oldest); err == nil {
		if err := os.Remove(oldest); err != nil {
			return b.recoverReopen(err)
		}
	}

	for k := b.backupCount - 1; k >= 1; k-- {
		src := fmt.Sprintf("%s.%d", b.filename, k)
		dst := fmt.Sprintf("%s.%d", b.filename, k+1)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.Rename(src, dst); err != nil {
			return b.recoverReopen(err)
		}
	}

	if err := os.Rename(b.filename, b.filename+".1"); err != nil {
		return b.recoverReopen(err)
	}

	f, err := os.OpenFile(b.filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return b.recoverReopen(err)
	}
	b.file = f
	b.bufw = bufio.NewWriter(f)
	b.currentSize = 0
	b.lastRotationTime = time.Now()
	return nil
}

// recoverReopen is the best-effort recovery path when a step of the
// rename chain fails: it tries once to reopen the original filename in
// append mode so the handler can keep serving writes, and always
// returns a wrapped HandlerIOError describing the original failure
// regardless of whether recovery succeeded.
func (b *fileBase) recoverReopen(rotErr error) error {
	f, openErr := os.OpenFile(b.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if openErr != nil {
		return errs.NewHandlerIOError(b.id, "rotation failed and recovery reopen also failed", fmt.Errorf("rotate: %w; reopen: %v", rotErr, openErr), false)
	}

	info, statErr := f.Stat()
	if statErr == nil {
		b.currentSize = info.Size()
	} else {
		b.currentSize = 0
	}

	b.file = f
	b.bufw = bufio.NewWriter(f)
	b.lastRotationTime = time.Now()
	return errs.NewHandlerIOError(b.id, "rotation failed, recovered by reopening in append mode", rotErr, true)
}
