// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: apim-subscription-key, api-token.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// KeySubscription is the API gateway subscription key file.
	KeySubscription = "apim-subscription-key"
	// KeyToken is a bearer token file.
	KeyToken = "api-token"

	// HeaderSubscription is the header the gateway expects the subscription key in.
	HeaderSubscription = "Ocp-Apim-Subscription-Key"
	// HeaderAuthorization carries the bearer token.
	HeaderAuthorization = "Authorization"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Headers converts the known secrets into request headers. Headers already
// present in base win over secrets, so explicit configuration is never
// overwritten. The returned map is a new map; base is not modified.
func Headers(secrets, base map[string]string) map[string]string {
	out := make(map[string]string, len(base)+2)
	if v := secrets[KeySubscription]; v != "" {
		out[HeaderSubscription] = v
	}
	if v := secrets[KeyToken]; v != "" {
		if !strings.HasPrefix(strings.ToLower(v), "bearer ") {
			v = "Bearer " + v
		}
		out[HeaderAuthorization] = v
	}
	for k, v := range base {
		out[k] = v
	}
	return out
}
