package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dynfan/dynfan/internal/bmc"
	"github.com/dynfan/dynfan/internal/control_loop"
	"github.com/dynfan/dynfan/internal/ui"
	"github.com/dynfan/dynfan/internal/util"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketCapabilities = "capabilities"
)

// Persistence stores the last applied channel speeds in flat positional
// text files and discovered legacy capabilities in a small key/value db.
type Persistence interface {
	Init() error

	// LoadState returns the last applied percent and bit values, one entry
	// per channel in declaration order. Missing or short files are padded
	// with the baseline so a cold start is always fully defined.
	LoadState(channelCount int, baselinePercent int) (percents []int, bits []int, err error)
	SaveState(percents []int, bits []int) error

	LoadCapability(channelId string) (bmc.Capability, error)
	SaveCapability(channelId string, capability bmc.Capability) error
}

type persistence struct {
	stateFile     string
	bitsStateFile string
	dbPath        string
}

func NewPersistence(stateFile string, bitsStateFile string, dbPath string) Persistence {
	p := &persistence{
		stateFile:     stateFile,
		bitsStateFile: bitsStateFile,
		dbPath:        dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	for _, path := range []string{p.stateFile, p.bitsStateFile, p.dbPath} {
		parentDir := filepath.Dir(path)
		_, err = os.Stat(parentDir)
		if errors.Is(err, os.ErrNotExist) {
			ui.Info("Creating state directory: %s", parentDir)
			err = os.MkdirAll(parentDir, 0755)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (p persistence) LoadState(channelCount int, baselinePercent int) ([]int, []int, error) {
	percents, err := p.loadIntFile(p.stateFile)
	if err != nil {
		return nil, nil, err
	}
	bits, err := p.loadIntFile(p.bitsStateFile)
	if err != nil {
		return nil, nil, err
	}

	percents = padState(percents, channelCount, baselinePercent)
	bits = padState(bits, channelCount, control_loop.PercentToBits(baselinePercent))

	for i := 0; i < channelCount; i++ {
		percents[i] = util.CoerceInt(percents[i], 0, 100)
		bits[i] = util.CoerceInt(bits[i], control_loop.MinBitsValue, control_loop.MaxBitsValue)
	}
	return percents, bits, nil
}

func (p persistence) SaveState(percents []int, bits []int) error {
	if err := util.WriteIntLinesAtomic(percents, p.stateFile); err != nil {
		return err
	}
	return util.WriteIntLinesAtomic(bits, p.bitsStateFile)
}

func (p persistence) loadIntFile(path string) ([]int, error) {
	values, err := util.ReadIntLines(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return values, err
}

// padState trims or extends values so exactly one entry per channel remains.
// Extra trailing entries from a shrunken channel list are dropped.
func padState(values []int, channelCount int, fill int) []int {
	if len(values) > channelCount {
		return values[:channelCount]
	}
	for len(values) < channelCount {
		values = append(values, fill)
	}
	return values
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SaveCapability saves the discovered control path of the given channel to persistence
func (p persistence) SaveCapability(channelId string, capability bmc.Capability) (err error) {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	data, err := json.Marshal(capability)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketCapabilities))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		err = b.Put([]byte(channelId), data)
		return err
	})
}

// LoadCapability loads the discovered control path of the given channel from persistence
func (p persistence) LoadCapability(channelId string) (bmc.Capability, error) {
	db, err := p.openPersistence()
	if err != nil {
		return bmc.Capability{}, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var capability bmc.Capability
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketCapabilities))
		if b == nil {
			return os.ErrNotExist
		}
		v := b.Get([]byte(channelId))
		if v == nil {
			return os.ErrNotExist
		}

		err := json.Unmarshal(v, &capability)
		if err != nil {
			// if we cannot read the saved data, delete it
			ui.Warning("Unable to unmarshal saved capability for %s: %v", channelId, err)
			err := b.Delete([]byte(channelId))
			if err != nil {
				ui.Error("Unable to delete corrupt data key %s: %v", channelId, err)
			}
			return os.ErrNotExist
		}

		return nil
	})

	return capability, err
}
