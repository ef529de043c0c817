//go:build !linux

package backend

import (
	"errors"
	"os"
)

func getBlockDeviceSize(_ *os.File) (int64, error) {
	return 0, errors.New("block devices are only supported on linux")
}

func getSectorSizes(_ *os.File) (int64, int64, error) {
	return 0, 0, errors.New("block devices are only supported on linux")
}

func preallocate(_ *os.File, _ int64) error {
	return nil
}
