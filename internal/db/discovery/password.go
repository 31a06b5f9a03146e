package discovery

import (
	"github.com/rebeliceyang/pgglance/internal/models"
)

// PasswordSource names where a resolved password came from.
type PasswordSource string

const (
	PasswordNone     PasswordSource = ""
	PasswordExplicit PasswordSource = "explicit"
	PasswordPgPass   PasswordSource = "pgpass"
	PasswordKeyring  PasswordSource = "keyring"
)

// ResolvePassword fills cfg.Password when it is empty, trying the pgpass
// entries first and then the keyring. A nil store skips the keyring.
func ResolvePassword(cfg *models.ConnectionConfig, entries []PgPassEntry, store *PasswordStore) PasswordSource {
	if cfg.Password != "" {
		return PasswordExplicit
	}
	if cfg.ConnString != "" {
		return PasswordNone
	}
	if pw := FindPassword(entries, cfg.Host, cfg.Port, cfg.Database, cfg.User); pw != "" {
		cfg.Password = pw
		return PasswordPgPass
	}
	if store != nil {
		if pw, err := store.Get(cfg.Host, cfg.Port, cfg.Database, cfg.User); err == nil && pw != "" {
			cfg.Password = pw
			return PasswordKeyring
		}
	}
	return PasswordNone
}
