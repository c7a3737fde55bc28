package amqp

import (
	"encoding/json"
	"time"
)

// TransactionSyncMessage asks the mirror worker to push one transaction to
// the Sheets backup. It carries only the ID and row version; the worker
// fetches the full record from the database.
type TransactionSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// TransactionDeleteMessage asks the mirror worker to remove a transaction's
// row from the Sheets backup. Rows are located by ID, so the ID is enough.
type TransactionDeleteMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// envelope wraps both message kinds on the shared queue.
type envelope struct {
	Kind   string          `json:"kind"` // "sync" or "delete"
	Body   json.RawMessage `json:"body"`
}

const (
	kindSync   = "sync"
	kindDelete = "delete"
)

func NewTransactionSyncMessage(id, version int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func NewTransactionDeleteMessage(id int64) *TransactionDeleteMessage {
	return &TransactionDeleteMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return wrap(kindSync, m)
}

func (m *TransactionDeleteMessage) ToJSON() ([]byte, error) {
	return wrap(kindDelete, m)
}

func wrap(kind string, msg any) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Kind: kind, Body: body})
}

// DecodeMessage parses a queue payload into one of the two message types.
func DecodeMessage(data []byte) (*TransactionSyncMessage, *TransactionDeleteMessage, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, err
	}
	switch env.Kind {
	case kindSync:
		var msg TransactionSyncMessage
		if err := json.Unmarshal(env.Body, &msg); err != nil {
			return nil, nil, err
		}
		return &msg, nil, nil
	case kindDelete:
		var msg TransactionDeleteMessage
		if err := json.Unmarshal(env.Body, &msg); err != nil {
			return nil, nil, err
		}
		return nil, &msg, nil
	default:
		return nil, nil, errUnknownKind(env.Kind)
	}
}

type errUnknownKind string

func (e errUnknownKind) Error() string {
	return "unknown message kind: " + string(e)
}
