package main

import (
	"context"
	"encoding/json"

	"github.com/boltdb/bolt"
)

// JournalEntry is an event as recorded by the journal.
type JournalEntry struct {
	Seq   uint64 `json:"seq"`
	Queue string `json:"queue"`
	Event Event  `json:"event"`
}

// Journal keeps a durable trace of consumed events.
type Journal interface {
	Append(ctx context.Context, qid string, event Event) error
	Latest(ctx context.Context, n int) ([]JournalEntry, error)
}

type boltJournal struct {
	client *bolt.DB
}

// NewBoltJournal provides a journal stored in the `journal` bucket.
func NewBoltJournal(client *bolt.DB) Journal {
	return &boltJournal{client: client}
}

// Append records an event under the next journal sequence number.
func (bj *boltJournal) Append(_ context.Context, qid string, event Event) error {
	return bj.client.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(journalBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(JournalEntry{Seq: seq, Queue: qid, Event: event})
		if err != nil {
			return err
		}
		return b.Put(itob(int64(seq)), data)
	})
}

// Latest returns up to n most recent entries, newest first.
func (bj *boltJournal) Latest(_ context.Context, n int) ([]JournalEntry, error) {
	entries := []JournalEntry{}
	err := bj.client.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(journalBucket).Cursor()
		for k, v := c.Last(); k != nil && len(entries) < n; k, v = c.Prev() {
			var entry JournalEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}
