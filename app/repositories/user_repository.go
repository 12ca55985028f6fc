package repositories

import (
	"strconv"
	"strings"
	"time"

	"blog/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB. Username
// and email lookups go through secondary index keys that are maintained in
// the same transaction as the user record, which also makes them the
// uniqueness check.
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

func usernameIdxKey(username string) []byte {
	return []byte(UsernameIdxPrefix + strings.ToLower(username))
}

func emailIdxKey(email string) []byte {
	return []byte(EmailIdxPrefix + strings.ToLower(email))
}

// Create creates a new user, enforcing username and email uniqueness
func (r *BadgerUserRepository) Create(user *models.User) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(usernameIdxKey(user.Username)); err == nil {
			return ErrUsernameTaken
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if _, err := txn.Get(emailIdxKey(user.Email)); err == nil {
			return ErrEmailTaken
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		id, err := getNextID(txn, UserSeqKey)
		if err != nil {
			return err
		}
		user.ID = id
		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now()
		}

		data, err := marshalEntity(user)
		if err != nil {
			return err
		}
		if err := txn.Set(userKey(user.ID), data); err != nil {
			return err
		}

		idVal := []byte(strconv.Itoa(user.ID))
		if err := txn.Set(usernameIdxKey(user.Username), idVal); err != nil {
			return err
		}
		return txn.Set(emailIdxKey(user.Email), idVal)
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id int) (*models.User, error) {
	var user models.User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &user)
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username (case-insensitive)
func (r *BadgerUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.getByIndex(usernameIdxKey(username))
}

// GetByEmail retrieves a user by email (case-insensitive)
func (r *BadgerUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getByIndex(emailIdxKey(email))
}

func (r *BadgerUserRepository) getByIndex(idxKey []byte) (*models.User, error) {
	var user models.User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idxKey)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var id int
		err = item.Value(func(val []byte) error {
			id, err = strconv.Atoi(string(val))
			return err
		})
		if err != nil {
			return err
		}

		item, err = txn.Get(userKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &user)
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user and keeps the index keys in sync
func (r *BadgerUserRepository) Update(user *models.User) error {
	return r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(user.ID))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var existing models.User
		if err := item.Value(func(val []byte) error {
			return unmarshalEntity(val, &existing)
		}); err != nil {
			return err
		}

		idVal := []byte(strconv.Itoa(user.ID))
		if !strings.EqualFold(existing.Username, user.Username) {
			if _, err := txn.Get(usernameIdxKey(user.Username)); err == nil {
				return ErrUsernameTaken
			} else if err != badger.ErrKeyNotFound {
				return err
			}
			if err := txn.Delete(usernameIdxKey(existing.Username)); err != nil {
				return err
			}
			if err := txn.Set(usernameIdxKey(user.Username), idVal); err != nil {
				return err
			}
		}
		if !strings.EqualFold(existing.Email, user.Email) {
			if _, err := txn.Get(emailIdxKey(user.Email)); err == nil {
				return ErrEmailTaken
			} else if err != badger.ErrKeyNotFound {
				return err
			}
			if err := txn.Delete(emailIdxKey(existing.Email)); err != nil {
				return err
			}
			if err := txn.Set(emailIdxKey(user.Email), idVal); err != nil {
				return err
			}
		}

		data, err := marshalEntity(user)
		if err != nil {
			return err
		}
		return txn.Set(userKey(user.ID), data)
	})
}

// Session methods

// SaveSession stores a session keyed by its token
func (r *BadgerUserRepository) SaveSession(session *models.Session) error {
	return r.db.Update(func(txn *badger.Txn) error {
		data, err := marshalEntity(session)
		if err != nil {
			return err
		}
		return txn.Set([]byte(SessionKeyPrefix+session.Token), data)
	})
}

// GetSession retrieves a session by token
func (r *BadgerUserRepository) GetSession(token string) (*models.Session, error) {
	var session models.Session
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(SessionKeyPrefix + token))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &session)
		})
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes a session by token
func (r *BadgerUserRepository) DeleteSession(token string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(SessionKeyPrefix + token))
	})
}

// DeleteSessionsForUser removes every session belonging to the user
func (r *BadgerUserRepository) DeleteSessionsForUser(userID int) error {
	return r.deleteForUser(SessionKeyPrefix, func(val []byte) (int, error) {
		var s models.Session
		if err := unmarshalEntity(val, &s); err != nil {
			return 0, err
		}
		return s.UserID, nil
	}, userID)
}

// Reset token methods

// SaveResetToken stores a password reset token
func (r *BadgerUserRepository) SaveResetToken(token *models.ResetToken) error {
	return r.db.Update(func(txn *badger.Txn) error {
		data, err := marshalEntity(token)
		if err != nil {
			return err
		}
		return txn.Set([]byte(ResetKeyPrefix+token.Token), data)
	})
}

// GetResetToken retrieves a reset token without consuming it
func (r *BadgerUserRepository) GetResetToken(token string) (*models.ResetToken, error) {
	var rt models.ResetToken
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ResetKeyPrefix + token))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &rt)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// ConsumeResetToken returns the reset token and deletes it in the same
// transaction. A second redemption of the same token gets ErrNotFound.
func (r *BadgerUserRepository) ConsumeResetToken(token string) (*models.ResetToken, error) {
	var rt models.ResetToken
	err := r.db.Update(func(txn *badger.Txn) error {
		key := []byte(ResetKeyPrefix + token)
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return unmarshalEntity(val, &rt)
		}); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// DeleteResetTokensForUser removes every outstanding reset token for the
// user. Called on any password change so stale reset links stop working.
func (r *BadgerUserRepository) DeleteResetTokensForUser(userID int) error {
	return r.deleteForUser(ResetKeyPrefix, func(val []byte) (int, error) {
		var rt models.ResetToken
		if err := unmarshalEntity(val, &rt); err != nil {
			return 0, err
		}
		return rt.UserID, nil
	}, userID)
}

func (r *BadgerUserRepository) deleteForUser(prefix string, owner func([]byte) (int, error), userID int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		var keys [][]byte
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			var id int
			err := item.Value(func(val []byte) error {
				var e error
				id, e = owner(val)
				return e
			})
			if err != nil {
				it.Close()
				return err
			}
			if id == userID {
				keys = append(keys, item.KeyCopy(nil))
			}
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}
