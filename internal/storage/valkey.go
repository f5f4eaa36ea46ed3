package storage

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// Valkey stores the workouts blob as a plain string key. Durability depends
// on the server's persistence settings.
type Valkey struct {
	client valkey.Client
	key    string
}

// NewValkey connects to the Valkey (Redis-compatible) server at addr.
func NewValkey(addr, key string) (*Valkey, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Valkey{client: client, key: key}, nil
}

// Save sets the key without expiry.
func (v *Valkey) Save(ctx context.Context, blob string) error {
	cmd := v.client.Do(ctx, v.client.B().Set().Key(v.key).Value(blob).Build())
	if err := cmd.Error(); err != nil {
		return fmt.Errorf("saving blob %q: %w", v.key, err)
	}
	return nil
}

// Load gets the key; a missing key is reported as ok=false.
func (v *Valkey) Load(ctx context.Context) (string, bool, error) {
	blob, err := v.client.Do(ctx, v.client.B().Get().Key(v.key).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("loading blob %q: %w", v.key, err)
	}
	return blob, true, nil
}

// Close releases the client.
func (v *Valkey) Close() error {
	v.client.Close()
	return nil
}
