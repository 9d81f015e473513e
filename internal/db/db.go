package db

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/supby/pressure2mqtt/internal/logger"
	"github.com/supby/pressure2mqtt/internal/settings"
)

var settingsKey = []byte("settings")

type SettingsDB interface {
	Load(ctx context.Context) (settings.State, error)
	Save(ctx context.Context, s settings.Settings) error
	Reset(ctx context.Context) error
	Close(ctx context.Context) error
}

type SettingsDBOptions struct {
	InMemory bool
	Logger   logger.Logger
}

func NewSettingsDB(dirname string, options SettingsDBOptions) (SettingsDB, error) {
	opt := badger.DefaultOptions(dirname)
	opt.ValueLogFileSize = 1024 * 1024 * 40
	if options.InMemory {
		opt = opt.WithDir("").WithValueDir("").WithInMemory(true)
	}
	if options.Logger != nil {
		opt = opt.WithLogger(badgerLogger{log: options.Logger})
	} else {
		opt = opt.WithLogger(nil)
	}

	db, err := badger.Open(opt)
	if err != nil {
		return nil, err
	}

	return &settingsDB{
		db: db,
	}, nil
}

type settingsDB struct {
	db *badger.DB
}

func (d *settingsDB) Load(ctx context.Context) (settings.State, error) {
	image, err := d.readImage()
	if errors.Is(err, badger.ErrKeyNotFound) {
		return settings.Unconfigured{}, nil
	}
	if err != nil {
		return nil, err
	}

	return settings.Decode(image)
}

func (d *settingsDB) Save(ctx context.Context, s settings.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	image, err := s.MarshalBinary()
	if err != nil {
		return err
	}

	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(settingsKey, image)
	})
}

// Reset clears the validity marker of the stored image. The rest of the
// image is left in place, as a flash erase of the flag would do.
func (d *settingsDB) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return d.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(settingsKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		image, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		if err := settings.SetMarker(image, settings.ClearedSettingsFlag); err != nil {
			// not decodable anyway, drop it
			return txn.Delete(settingsKey)
		}

		return txn.Set(settingsKey, image)
	})
}

func (d *settingsDB) readImage() ([]byte, error) {
	var ret []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(settingsKey)
		if err != nil {
			return err
		}

		ret, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, err
	}

	return ret, nil
}

func (d *settingsDB) Close(ctx context.Context) error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("closing settings db: %w", err)
	}

	return nil
}

type badgerLogger struct {
	log logger.Logger
}

func (l badgerLogger) Errorf(message string, v ...interface{})   { l.log.Error(message, v...) }
func (l badgerLogger) Warningf(message string, v ...interface{}) { l.log.Warn(message, v...) }
func (l badgerLogger) Infof(message string, v ...interface{})    { l.log.Debug(message, v...) }
func (l badgerLogger) Debugf(message string, v ...interface{})   { l.log.Debug(message, v...) }
