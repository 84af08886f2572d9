package records

import "context"

// StoreInterface defines the read surface the doctor portal consumes plus
// appends from the conversation flow.
type StoreInterface interface {
	Append(ctx context.Context, record PatientRecord) error
	All() []PatientRecord
	Get(id string) (*PatientRecord, bool)
	FilterByPhone(phone string) []PatientRecord
}

// KV is the durable document storage behind the store: one key holding the
// serialized record array, read once at startup and rewritten wholesale on
// every append.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// Ensure Store implements StoreInterface
var _ StoreInterface = (*Store)(nil)
