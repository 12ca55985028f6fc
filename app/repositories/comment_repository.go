package repositories

import (
	"sort"

	"blog/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create creates a new comment. The referenced post must exist; the check
// and the insert run in one transaction, so a concurrent post deletion
// either happens before the check (ErrNotFound) or conflicts at commit
// time. A nil post reference can only ever be produced by orphaning.
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if comment.PostID == nil {
			return ErrNotFound
		}
		_, err := txn.Get(postKey(*comment.PostID))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id
		comment.BeforeCreate()

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}

		return txn.Set(commentKey(comment.ID), data)
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(commentKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &comment)
		})
	})

	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves the post's comments oldest first, natural reading
// order.
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	comments, err := r.listWhere(func(c *models.Comment) bool {
		return c.PostID != nil && *c.PostID == postID
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].PublishedAt.Equal(comments[j].PublishedAt) {
			return comments[i].PublishedAt.Before(comments[j].PublishedAt)
		}
		return comments[i].ID < comments[j].ID
	})

	return comments, nil
}

// ListOrphaned retrieves comments whose post has been deleted
func (r *BadgerCommentRepository) ListOrphaned() ([]*models.Comment, error) {
	return r.listWhere(func(c *models.Comment) bool {
		return c.PostID == nil
	})
}

func (r *BadgerCommentRepository) listWhere(match func(*models.Comment) bool) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(CommentKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var comment models.Comment
			err := item.Value(func(val []byte) error {
				return unmarshalEntity(val, &comment)
			})
			if err != nil {
				return err
			}
			if match(&comment) {
				c := comment
				comments = append(comments, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(commentKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return txn.Delete(commentKey(id))
	})
}
