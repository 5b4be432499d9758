// Package secrets keeps provider API keys in a per-user file so they do not
// have to live in config.toml or the shell environment.
//
// Keys are sealed with AES-GCM under a machine/user derived key. This keeps
// them out of plain text; it is not a substitute for an OS keychain.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const fileName = "keys.json"

var (
	ErrNotFound        = errors.New("api key not found")
	ErrProviderMissing = errors.New("provider required")
)

type keyFile struct {
	Keys map[string]string `json:"keys"` // provider -> base64(nonce|ciphertext)
}

// Store reads and writes sealed keys under Dir.
type Store struct {
	Dir string
}

// Default returns the store under the user config directory.
func Default() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &Store{Dir: filepath.Join(dir, "surakshapath")}, nil
}

func (s *Store) path() string { return filepath.Join(s.Dir, fileName) }

// Set seals key for provider, replacing any previous value.
func (s *Store) Set(provider, key string) error {
	if provider = normProvider(provider); provider == "" {
		return ErrProviderMissing
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	kf, err := s.load()
	if err != nil {
		return err
	}
	sealed, err := seal([]byte(strings.TrimSpace(key)))
	if err != nil {
		return err
	}
	kf.Keys[provider] = base64.StdEncoding.EncodeToString(sealed)
	return s.save(kf)
}

// Get returns the key stored for provider or ErrNotFound.
func (s *Store) Get(provider string) (string, error) {
	if provider = normProvider(provider); provider == "" {
		return "", ErrProviderMissing
	}
	kf, err := s.load()
	if err != nil {
		return "", err
	}
	enc, ok := kf.Keys[provider]
	if !ok {
		return "", ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode %s key: %w", provider, err)
	}
	plain, err := open(raw)
	if err != nil {
		return "", fmt.Errorf("unseal %s key: %w", provider, err)
	}
	return string(plain), nil
}

// Delete removes the key for provider. Deleting a missing key is not an error.
func (s *Store) Delete(provider string) error {
	if provider = normProvider(provider); provider == "" {
		return ErrProviderMissing
	}
	kf, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := kf.Keys[provider]; !ok {
		return nil
	}
	delete(kf.Keys, provider)
	return s.save(kf)
}

func (s *Store) load() (keyFile, error) {
	kf := keyFile{Keys: map[string]string{}}
	data, err := os.ReadFile(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return kf, nil
	}
	if err != nil {
		return kf, err
	}
	if err := json.Unmarshal(data, &kf); err != nil {
		return kf, fmt.Errorf("parse %s: %w", s.path(), err)
	}
	if kf.Keys == nil {
		kf.Keys = map[string]string{}
	}
	return kf, nil
}

func (s *Store) save(kf keyFile) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path())
}

func normProvider(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func sealKey() []byte {
	sum := sha256.Sum256([]byte(fmt.Sprintf("surakshapath-%s-%s", runtime.GOOS, os.Getenv("USER"))))
	return sum[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(sealKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func seal(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func open(sealed []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	return gcm.Open(nil, sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():], nil)
}
