//go:build darwin

package bundle

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

func readFinderInfo(path string) ([]byte, error) {
	buf := make([]byte, finderInfoSize)
	n, err := unix.Getxattr(path, finderInfoAttr, buf)
	if errors.Is(err, unix.ENOATTR) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read FinderInfo: %w", err)
	}
	return buf[:n], nil
}

func setCustomIconFlag(path string) error {
	info, err := readFinderInfo(path)
	if err != nil {
		return err
	}
	if err := unix.Setxattr(path, finderInfoAttr, withCustomIconFlag(info), 0); err != nil {
		return fmt.Errorf("write FinderInfo: %w", err)
	}
	return nil
}

func customIconFlag(path string) (bool, error) {
	info, err := readFinderInfo(path)
	if err != nil {
		return false, err
	}
	return customIconFlagSet(info), nil
}
