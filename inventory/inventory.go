// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package inventory is the durable, per-IMEI record of known remote
// files and the last firmware-update outcome (§10.3), backed by an
// embedded bbolt store so both survive a host-process restart. It does
// not store in-progress download, listing, or OTA driver state.
package inventory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketKey = "device_inventory"

const otaSuffix = ":ota"

// OpenDB opens (or creates) the bbolt database at path and guarantees
// the inventory bucket exists.
func OpenDB(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketKey))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func fileKey(imei, fileName string) []byte {
	return []byte(fmt.Sprintf("%s:%s", imei, fileName))
}

func otaKey(imei string) []byte {
	return []byte(imei + otaSuffix)
}

// Remember records that imei reported fileName in a completed file
// listing (§4.6).
func Remember(db *bolt.DB, imei, fileName string) error {
	return db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketKey)).Put(fileKey(imei, fileName), []byte{1})
	})
}

// Forget removes fileName from imei's known file set.
func Forget(db *bolt.DB, imei, fileName string) error {
	return db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketKey)).Delete(fileKey(imei, fileName))
	})
}

// List returns every file name remembered for imei.
func List(db *bolt.DB, imei string) ([]string, error) {
	var files []string
	prefix := []byte(imei + ":")
	err := db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketKey)).Cursor()
		for k, _ := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, _ = c.Next() {
			name := strings.TrimPrefix(string(k), string(prefix))
			if name == "ota" {
				continue
			}
			files = append(files, name)
		}
		return nil
	})
	return files, err
}

// OTAResult is the last firmware-update outcome recorded for a device.
type OTAResult struct {
	FileName   string    `json:"file_name"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// RecordOTAResult persists imei's most recent firmware-update outcome,
// overwriting any previous one.
func RecordOTAResult(db *bolt.DB, imei string, result OTAResult) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketKey)).Put(otaKey(imei), encoded)
	})
}

// LastOTAResult returns imei's most recently recorded firmware-update
// outcome. ok is false if none has been recorded.
func LastOTAResult(db *bolt.DB, imei string) (result OTAResult, ok bool, err error) {
	err = db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bucketKey)).Get(otaKey(imei))
		if raw == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(raw, &result)
	})
	return result, ok, err
}
