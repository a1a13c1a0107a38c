package sysfs

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
)

func readFileInt(name string) (int, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(string(bytes.TrimSpace(b)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}

// writeFileInt writes to an existing attribute; sysfs attributes are never created
func writeFileInt(name string, v int) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(strconv.Itoa(v)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
