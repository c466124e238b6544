package delegation

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sufield/yummy/internal/ports"
)

// storeFile is the on-disk layout.
type storeFile struct {
	Version    int               `yaml:"version"`
	SessionKey string            `yaml:"session_key,omitempty"` // base64 ed25519 seed
	Delegation *storedDelegation `yaml:"delegation,omitempty"`
}

type storedDelegation struct {
	Chain         string    `yaml:"chain"`           // base64
	UserPublicKey string    `yaml:"user_public_key"` // base64 DER
	Expiration    time.Time `yaml:"expiration"`
}

// session is the decoded store content.
type session struct {
	key        ed25519.PrivateKey
	chain      []byte
	userKey    []byte
	expiration time.Time
}

func (s session) hasDelegation() bool {
	return len(s.chain) > 0 && len(s.userKey) > 0
}

// Store persists the session in a YAML file readable only by the owner.
type Store struct {
	path string
}

// NewStore returns a store at path. An empty path selects
// <user config dir>/yummy/session.yaml.
func NewStore(path string) (*Store, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		path = filepath.Join(dir, "yummy", "session.yaml")
	}
	return &Store{path: filepath.Clean(path)}, nil
}

func (s *Store) Path() string { return s.path }

// Load reads the store. A missing file is an empty session.
func (s *Store) Load() (session, error) {
	data, err := os.ReadFile(s.path) // #nosec G304 - path is the user's own store
	if errors.Is(err, os.ErrNotExist) {
		return session{}, nil
	}
	if err != nil {
		return session{}, fmt.Errorf("read session store: %w", err)
	}

	var f storeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return session{}, fmt.Errorf("%w: %v", ports.ErrStoreCorrupt, err)
	}

	var out session
	if f.SessionKey != "" {
		seed, err := base64.StdEncoding.DecodeString(f.SessionKey)
		if err != nil || len(seed) != ed25519.SeedSize {
			return session{}, fmt.Errorf("%w: bad session key", ports.ErrStoreCorrupt)
		}
		out.key = ed25519.NewKeyFromSeed(seed)
	}
	if d := f.Delegation; d != nil {
		chain, err := base64.StdEncoding.DecodeString(d.Chain)
		if err != nil {
			return session{}, fmt.Errorf("%w: bad delegation chain", ports.ErrStoreCorrupt)
		}
		userKey, err := base64.StdEncoding.DecodeString(d.UserPublicKey)
		if err != nil {
			return session{}, fmt.Errorf("%w: bad user public key", ports.ErrStoreCorrupt)
		}
		out.chain, out.userKey, out.expiration = chain, userKey, d.Expiration
	}
	return out, nil
}

// Save replaces the store atomically.
func (s *Store) Save(sess session) error {
	f := storeFile{Version: 1}
	if sess.key != nil {
		f.SessionKey = base64.StdEncoding.EncodeToString(sess.key.Seed())
	}
	if sess.hasDelegation() {
		f.Delegation = &storedDelegation{
			Chain:         base64.StdEncoding.EncodeToString(sess.chain),
			UserPublicKey: base64.StdEncoding.EncodeToString(sess.userKey),
			Expiration:    sess.expiration.UTC(),
		}
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encode session store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session store: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace session store: %w", err)
	}
	return nil
}
