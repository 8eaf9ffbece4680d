// Package credentials loads the service-account document that signs login links and session tokens.
package credentials

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/hkdf"
)

var (
	ErrInvalid = errors.New("invalid service-account credential")
	// ErrRefresh is returned by a Source whose last reload failed.
	ErrRefresh = errors.New("credential refresh failed")
)

// Credential mirrors the fields of a service-account JSON key that are used here.
type Credential struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
}

// Source hands out the credential currently in effect.
type Source interface {
	Current() (Credential, error)
}

// Static is a Source that never changes.
type Static Credential

func (s Static) Current() (Credential, error) {
	return Credential(s), nil
}

// Parse decodes and validates a credential document.
func Parse(data []byte) (Credential, error) {
	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if cred.Type != "service_account" {
		return Credential{}, fmt.Errorf("%w: type must be service_account, got %q", ErrInvalid, cred.Type)
	}
	if strings.TrimSpace(cred.PrivateKey) == "" {
		return Credential{}, fmt.Errorf("%w: private_key is empty", ErrInvalid)
	}
	if strings.TrimSpace(cred.ClientEmail) == "" {
		return Credential{}, fmt.Errorf("%w: client_email is empty", ErrInvalid)
	}
	return cred, nil
}

// Load reads the credential at path. Relative paths are tried against the working directory first and
// then against the directory of the running executable.
func Load(path string) (Credential, string, error) {
	resolved := ResolvePath(path)
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Credential{}, resolved, fmt.Errorf("read credential %s: %w", resolved, err)
	}
	cred, err := Parse(data)
	if err != nil {
		return Credential{}, resolved, err
	}
	return cred, resolved, nil
}

func ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	exe, err := os.Executable()
	if err != nil {
		return path
	}
	candidate := filepath.Join(filepath.Dir(exe), path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}

// DeriveKey expands the private key into a 32-byte HMAC key bound to label.
func (c Credential) DeriveKey(label string) ([]byte, error) {
	reader := hkdf.New(sha256.New, []byte(c.PrivateKey), []byte(c.PrivateKeyID), []byte("phrasebook/"+label))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", label, err)
	}
	return key, nil
}
