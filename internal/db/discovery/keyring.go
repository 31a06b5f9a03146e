package discovery

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName  = "pgglance"
	passwordSalt = "pgglance-keyring-salt-v1"
)

// ErrPasswordNotFound is returned when no password is stored for a connection.
var ErrPasswordNotFound = errors.New("password not found in keyring")

// PasswordStore keeps connection passwords in the OS keyring, falling back
// to an encrypted file under the config directory.
type PasswordStore struct {
	ring keyring.Keyring
}

// OpenPasswordStore opens the keyring with platform-appropriate backends.
func OpenPasswordStore(configDir string) (*PasswordStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:     serviceName,
		AllowedBackends: backendsForPlatform(),
		FileDir:         filepath.Join(configDir, "keyring"),
		FilePasswordFunc: func(string) (string, error) {
			return deriveFilePassword(), nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return &PasswordStore{ring: ring}, nil
}

// NewPasswordStore wraps an already opened keyring.
func NewPasswordStore(ring keyring.Keyring) *PasswordStore {
	return &PasswordStore{ring: ring}
}

func backendsForPlatform() []keyring.BackendType {
	switch runtime.GOOS {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.FileBackend}
	case "linux":
		return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.FileBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend, keyring.FileBackend}
	default:
		return []keyring.BackendType{keyring.FileBackend}
	}
}

// deriveFilePassword is stable per machine and user so the file backend
// opens without prompting.
func deriveFilePassword() string {
	machineID := ""
	for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		if data, err := os.ReadFile(path); err == nil {
			machineID = strings.TrimSpace(string(data))
			break
		}
	}
	if machineID == "" {
		machineID, _ = os.Hostname()
	}

	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}
	if username == "" {
		username = fmt.Sprintf("uid-%d", os.Getuid())
	}

	hash := sha256.Sum256([]byte(machineID + username + passwordSalt))
	return base64.StdEncoding.EncodeToString(hash[:])
}

// Save stores a password. Empty passwords are not stored.
func (ps *PasswordStore) Save(host string, port int, database, user, password string) error {
	if password == "" {
		return nil
	}
	err := ps.ring.Set(keyring.Item{
		Key:         makeKey(host, port, database, user),
		Data:        []byte(password),
		Label:       fmt.Sprintf("pgglance: %s@%s:%d/%s", user, host, port, database),
		Description: "PostgreSQL monitoring password for pgglance",
	})
	if err != nil {
		return fmt.Errorf("failed to save password to keyring: %w", err)
	}
	return nil
}

// Get retrieves a password, returning ErrPasswordNotFound when none is stored.
func (ps *PasswordStore) Get(host string, port int, database, user string) (string, error) {
	item, err := ps.ring.Get(makeKey(host, port, database, user))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrPasswordNotFound
		}
		return "", fmt.Errorf("failed to read password from keyring: %w", err)
	}
	return string(item.Data), nil
}

func makeKey(host string, port int, database, user string) string {
	return fmt.Sprintf("%s:%d:%s:%s", host, port, database, user)
}
