// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kasiabeben10/poll-app/auth"
)

// DefaultKeypairPath is ~/.config/poll-app/id.json.
func DefaultKeypairPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find home directory: %w", err)
	}
	return filepath.Join(home, ".config", "poll-app", "id.json"), nil
}

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// LoadKeypair reads a {"public_key", "private_key"} JSON keyfile.
func LoadKeypair(path string) (auth.Keypair, error) {
	path, err := ExpandHome(path)
	if err != nil {
		return auth.Keypair{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return auth.Keypair{}, fmt.Errorf("failed to read keypair: %w", err)
	}

	var kp auth.Keypair
	if err := json.Unmarshal(data, &kp); err != nil {
		return auth.Keypair{}, fmt.Errorf("failed to read keypair %s: %w", path, err)
	}
	return kp, nil
}

// SaveKeypair writes kp to path readable only by the user. An existing
// file is replaced only when overwrite is set.
func SaveKeypair(path string, kp auth.Keypair, overwrite bool) error {
	path, err := ExpandHome(path)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(kp, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create keypair directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write keypair: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("failed to write keypair: %w", err)
	}
	return f.Close()
}
