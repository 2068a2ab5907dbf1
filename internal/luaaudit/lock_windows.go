// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

//go:build windows

package luaaudit

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// fileLock holds an advisory, exclusive, non-blocking lock acquired
// with LockFileEx.
type fileLock struct {
	f *os.File
}

func lockFile(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o666)
	if err != nil {
		return nil, err
	}
	ol := new(windows.Overlapped)
	err = windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0, 1, 0, ol,
	)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: another process is already running: %w", path, err)
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	ol := new(windows.Overlapped)
	err := windows.UnlockFileEx(windows.Handle(l.f.Fd()), 0, 1, 0, ol)
	if closeErr := l.f.Close(); err == nil {
		err = closeErr
	}
	return err
}
