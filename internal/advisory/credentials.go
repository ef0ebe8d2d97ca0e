// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package advisory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// CredentialProvider supplies the API key for a backend. Implementations return
// ErrCredentialMissing when no key is available.
type CredentialProvider interface {
	APIKey(ctx context.Context) (string, error)
}

// EnvCredentials reads the API key from an environment variable.
type EnvCredentials struct {
	Variable string
}

func NewEnvCredentials(variable string) EnvCredentials {
	return EnvCredentials{Variable: variable}
}

func (e EnvCredentials) APIKey(context.Context) (string, error) {
	key := strings.TrimSpace(os.Getenv(e.Variable))
	if key == "" {
		return "", fmt.Errorf("%w: environment variable %s is empty", ErrCredentialMissing, e.Variable)
	}
	return key, nil
}

// KeyStoreCredentials reads the API key from a user-managed file. The first line that is
// neither empty nor a # comment is used. The file is read on every call, so a key added
// later is picked up without a restart.
type KeyStoreCredentials struct {
	Path string
}

func NewKeyStoreCredentials(path string) KeyStoreCredentials {
	return KeyStoreCredentials{Path: path}
}

func (k KeyStoreCredentials) APIKey(context.Context) (string, error) {
	data, err := os.ReadFile(k.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: key file %q does not exist", ErrCredentialMissing, k.Path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key file %q: %w", k.Path, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
	return "", fmt.Errorf("%w: key file %q contains no key", ErrCredentialMissing, k.Path)
}
