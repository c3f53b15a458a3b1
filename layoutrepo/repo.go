package layoutrepo

import (
	"encoding/binary"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/loomlang/bespoke/errors"
	"github.com/loomlang/bespoke/layout"
)

var bucketLayouts = []byte("layouts")

// record is the stored form of one layout registration.
type record struct {
	Index uint16   `msgpack:"index"`
	Keys  []string `msgpack:"keys"`
}

// Repo is a durable store of layout registrations.
type Repo struct {
	db     *bbolt.DB
	logger *zap.Logger
}

// Open opens or creates a repository file.
func Open(path string) (*Repo, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(errors.PhasePersist, errors.KindNotFound, err, "open layout repository")
	}
	return &Repo{db: db, logger: zap.NewNop()}, nil
}

// SetLogger installs a logger for save and restore events.
func (r *Repo) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	r.logger = l
}

// Close closes the underlying database.
func (r *Repo) Close() error {
	return r.db.Close()
}

// Save writes every layout in the registry, replacing whatever the
// repository held before.
func (r *Repo) Save(reg *layout.Registry) error {
	var n int
	err := r.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketLayouts) != nil {
			if err := tx.DeleteBucket(bucketLayouts); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(bucketLayouts)
		if err != nil {
			return err
		}

		var inner error
		reg.Each(func(l *layout.StructLayout) bool {
			ko := l.KeyOrder()
			rec := record{Index: uint16(l.Index()), Keys: make([]string, ko.Len())}
			for i := 0; i < ko.Len(); i++ {
				rec.Keys[i] = ko.At(i).String()
			}
			buf, err := msgpack.Marshal(&rec)
			if err != nil {
				inner = err
				return false
			}
			var key [2]byte
			binary.BigEndian.PutUint16(key[:], uint16(l.Index()))
			if err := b.Put(key[:], buf); err != nil {
				inner = err
				return false
			}
			n++
			return true
		})
		return inner
	})
	if err != nil {
		return errors.Wrap(errors.PhasePersist, errors.KindCorruptRecord, err, "save layouts")
	}
	r.logger.Info("saved layout registry", zap.Int("layouts", n))
	return nil
}

// Restore replays every stored registration into the registry, in
// creation order. Each record goes through Registry.Deserialize, which
// panics when the registry assigns a different index: a registry that
// already diverged from the repository is unrecoverable. Undecodable
// records return an error.
func (r *Repo) Restore(reg *layout.Registry) error {
	var n int
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketLayouts)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var rec record
			if err := msgpack.Unmarshal(v, &rec); err != nil {
				return errors.CorruptRecord(err, "layout record")
			}
			reg.Deserialize(layout.Index(rec.Index), layout.InternKeys(rec.Keys...))
			n++
			return nil
		})
	})
	if err != nil {
		return err
	}
	r.logger.Info("restored layout registry", zap.Int("layouts", n))
	return nil
}
