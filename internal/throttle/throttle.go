// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package throttle implements the per-category issuance limiter and
// the global verification limiter of spec.md §4.5: a file-locked,
// key-encrypted "last write" tick persisted under the scratch
// directory, enforced by sleeping inside the held lock.
package throttle

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/speedrun-tools/seedticket/internal/cryptoprim"
	"github.com/speedrun-tools/seedticket/internal/ticktime"
)

// Role distinguishes the issuance limiter (one per category) from the
// verification limiter (one global instance, conventionally stored
// under category number 0).
type Role string

const (
	RoleIssuance     Role = "issuance"
	RoleVerification Role = "verification"
)

// ErrLockTimeout is the Resource error class failure of spec.md §7:
// the advisory lock could not be acquired within the deadline.
var ErrLockTimeout = errors.New("throttle: lock acquisition timed out")

// Throttle guards issuance and verification operations with advisory
// file locks and persisted tick state under TmpDir, salted per
// spec.md §3.
type Throttle struct {
	TmpDir      string
	Key         []byte
	Salt        []byte
	LockTimeout time.Duration

	// retryInterval controls how often TryLock is retried while
	// waiting for the lock, defaulting to 50ms when zero.
	retryInterval time.Duration
}

// paths returns the (data file, lock file) pair for (category, role),
// named per spec.md §6: <TMP_DIR>/<hex(HMAC(SALT, "NNN.<role>.file"))>
// with a companion ".lock" file.
func (t *Throttle) paths(category byte, role Role) (dataPath, lockPath string) {
	name := fmt.Sprintf("%03d.%s.file", category, role)
	digest := cryptoprim.HMACSHA256(t.Salt, []byte(name))
	hexName := fmt.Sprintf("%x", digest)
	dataPath = filepath.Join(t.TmpDir, hexName)
	lockPath = dataPath + ".lock"
	return dataPath, lockPath
}

// Wait runs the full throttle protocol of spec.md §4.5 for one
// (category, role) pair and required spacing interval, returning the
// post-sleep tick count the caller should stamp into its ticket or
// treat as the accepted verification moment.
func (t *Throttle) Wait(ctx context.Context, category byte, role Role, required time.Duration) (uint32, error) {
	dataPath, lockPath := t.paths(category, role)

	lock := flock.New(lockPath)
	retry := t.retryInterval
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	lockCtx, cancel := context.WithTimeout(ctx, t.LockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, retry)
	if err != nil || !locked {
		return 0, ErrLockTimeout
	}
	defer lock.Unlock()

	lastTick, haveLast := t.readLastTick(dataPath)

	var sleepFor time.Duration
	if !haveLast {
		// Missing or corrupt record: force the full interval rather
		// than compute a delta from a fabricated "distant past" tick
		// (which would yield a huge delta and skip the sleep
		// entirely) or a fabricated "now" tick (zero delta, which
		// spec.md §4.5 explicitly forbids relying on). See DESIGN.md.
		sleepFor = required
	} else {
		now := ticktime.Encode(time.Now().UTC())
		delta := time.Duration(int64(now)-int64(lastTick)) * ticktime.Tick
		if delta < required {
			sleepFor = required - delta
		}
	}

	if sleepFor > 0 {
		select {
		case <-time.After(sleepFor):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	nowTick := ticktime.Encode(time.Now().UTC())
	if err := t.writeTick(dataPath, nowTick); err != nil {
		return 0, err
	}
	return nowTick, nil
}

// readLastTick returns the persisted tick and true, or (0, false) if
// the file is absent, empty, or fails to decrypt.
func (t *Throttle) readLastTick(path string) (uint32, bool) {
	raw, err := os.ReadFile(path)
	if err != nil || len(raw) == 0 {
		return 0, false
	}
	plain, err := cryptoprim.DecryptBlob(raw, t.Key)
	if err != nil || len(plain) != 8 {
		return 0, false
	}
	tick64 := binary.BigEndian.Uint64(plain)
	return uint32(tick64), true
}

// writeTick persists tick as a fixed 8-byte big-endian width (spec.md
// §9 resolves the "minimal width" ambiguity this way) under
// encryption, then atomically replaces the existing file.
func (t *Throttle) writeTick(path string, tick uint32) error {
	var plain [8]byte
	binary.BigEndian.PutUint64(plain[:], uint64(tick))

	blob, err := cryptoprim.EncryptBlob(plain[:], t.Key)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
